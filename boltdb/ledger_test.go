package boltdb

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLedger(t *testing.T) {
	dir, err := ioutil.TempDir("", "ledgertest")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	ledger, err := NewLedger(filepath.Join(dir, "ledger.db"))
	if err != nil {
		t.Fatalf("opening ledger: %v", err)
	}
	defer ledger.Close()

	mod := time.Date(2020, 3, 14, 9, 26, 53, 0, time.UTC)
	if !ledger.Changed("a.xml", mod, 100) {
		t.Fatal("unseen file should read as changed")
	}
	if err := ledger.Mark("a.xml", mod, 100); err != nil {
		t.Fatalf("marking: %v", err)
	}
	if ledger.Changed("a.xml", mod, 100) {
		t.Fatal("marked file with same state should not read as changed")
	}
	if !ledger.Changed("a.xml", mod.Add(time.Second), 100) {
		t.Fatal("newer mod time should read as changed")
	}
	if !ledger.Changed("a.xml", mod, 101) {
		t.Fatal("different size should read as changed")
	}
	if !ledger.Changed("b.xml", mod, 100) {
		t.Fatal("other paths are tracked independently")
	}
}

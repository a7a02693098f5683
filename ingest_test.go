package mdk

import (
	"io"
	"testing"

	"github.com/pkg/errors"
)

// sliceSource yields a fixed set of records (or per-record errors).
type sliceSource struct {
	recs []*Record
	errs []error
	i    int
}

func (s *sliceSource) Record() (*Record, error) {
	if s.i >= len(s.recs) {
		return nil, io.EOF
	}
	rec, err := s.recs[s.i], s.errs[s.i]
	s.i++
	return rec, err
}

// fakeIndexer collects added documents in memory.
type fakeIndexer struct {
	added  []Document
	addErr error
	closed bool
}

func (f *fakeIndexer) Add(docs ...Document) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, docs...)
	return nil
}

func (f *fakeIndexer) Search(id string) ([]Document, error) {
	var out []Document
	for _, d := range f.added {
		if d.ID() == id {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeIndexer) Delete(id string) error { return nil }

func (f *fakeIndexer) Close() error {
	f.closed = true
	return nil
}

func goodRecord(id string) *Record {
	return NewRecord(map[string]interface{}{
		"metadata_identifier": id,
		"title":               "t",
		"geographic_extent": map[string]interface{}{
			"rectangle": map[string]interface{}{
				"north": "80", "south": "70", "east": "30", "west": "10",
			},
		},
	}, nil, id+".xml")
}

func badBoundsRecord(id string) *Record {
	return NewRecord(map[string]interface{}{
		"metadata_identifier": id,
		"geographic_extent": map[string]interface{}{
			"rectangle": map[string]interface{}{
				"north": "80", "south": "70", "east": "30",
			},
		},
	}, nil, id+".xml")
}

func TestIngesterContinuesPastBadRecords(t *testing.T) {
	src := &sliceSource{
		recs: []*Record{goodRecord("a"), badBoundsRecord("b"), nil, goodRecord("c")},
		errs: []error{nil, nil, errors.New("decode failure"), nil},
	}
	idx := &fakeIndexer{}
	ing := NewIngester(src, NewTransformer(), idx)

	if err := ing.Run(); err != nil {
		t.Fatalf("running: %v", err)
	}
	if len(idx.added) != 2 {
		t.Fatalf("indexed %d documents, expected 2", len(idx.added))
	}
	if idx.added[0].ID() != "a" || idx.added[1].ID() != "c" {
		t.Fatalf("indexed ids = %s, %s", idx.added[0].ID(), idx.added[1].ID())
	}
	if !idx.closed {
		t.Fatal("the indexer must be closed after the run")
	}
}

func TestIngesterChildLevelLinks(t *testing.T) {
	// Index the parent first, then run a child-level batch against the
	// same store.
	idx := &fakeIndexer{}
	parentSrc := &sliceSource{recs: []*Record{goodRecord("parent-1")}, errs: []error{nil}}
	if err := NewIngester(parentSrc, NewTransformer(), idx).Run(); err != nil {
		t.Fatalf("parent run: %v", err)
	}

	childTree := goodRecord("child-1")
	childTree.SetField("related_dataset", map[string]interface{}{
		"#text":          "parent-1",
		"-relation_type": "parent",
	})
	orphanTree := goodRecord("orphan-1")
	orphanTree.SetField("related_dataset", map[string]interface{}{
		"#text":          "no-such-parent",
		"-relation_type": "parent",
	})

	childSrc := &sliceSource{recs: []*Record{childTree, orphanTree}, errs: []error{nil, nil}}
	ing := NewIngester(childSrc, NewTransformer(), idx)
	ing.Level = LevelChild
	if err := ing.Run(); err != nil {
		t.Fatalf("child run: %v", err)
	}

	parents, _ := idx.Search("parent-1")
	found := false
	for _, p := range parents {
		if p.String("isParent") == "true" {
			found = true
			if got := p.Strings("related_dataset"); len(got) != 1 || got[0] != "child-1" {
				t.Errorf("parent related_dataset = %v", got)
			}
		}
	}
	if !found {
		t.Fatal("no updated parent document was written")
	}

	children, _ := idx.Search("child-1")
	if len(children) == 0 || children[0].String("isChild") != "true" {
		t.Fatal("the child document was not written with isChild set")
	}
	if orphans, _ := idx.Search("orphan-1"); len(orphans) != 0 {
		t.Fatal("an orphan child must not be indexed")
	}
}

func TestIngesterFeatureTypeAndThumbnail(t *testing.T) {
	rec := goodRecord("ds-1")
	rec.SetField("data_access", []interface{}{
		map[string]interface{}{"type": "OPeNDAP", "resource": "https://thredds.example/dodsC/ds"},
		map[string]interface{}{"type": "OGC WMS", "resource": "https://thredds.example/wms/ds"},
	})
	src := &sliceSource{recs: []*Record{rec}, errs: []error{nil}}
	idx := &fakeIndexer{}
	ing := NewIngester(src, NewTransformer(), idx)
	ing.FeatureType = func(url string) (string, error) { return "timeseries", nil }
	ing.Thumbnail = func(url string) (string, error) { return "", errors.New("wms down") }

	if err := ing.Run(); err != nil {
		t.Fatalf("running: %v", err)
	}
	if len(idx.added) != 1 {
		t.Fatalf("indexed %d documents", len(idx.added))
	}
	doc := idx.added[0]
	if got := doc.String("feature_type"); got != "timeSeries" {
		t.Errorf("feature_type = %q, expected the normalized label", got)
	}
	// A failed thumbnail removes the WMS url instead of failing the record.
	if doc.Has("data_access_url_ogc_wms") {
		t.Error("the WMS url must be dropped when the thumbnail fails")
	}
	if doc.Has("thumbnail_data") {
		t.Error("no thumbnail_data expected on failure")
	}
}

package opendap

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleDAS = `Attributes {
    NC_GLOBAL {
        String title "Ocean buoy observations";
        String featureType "timeSeries";
        String Conventions "CF-1.8";
    }
}
`

func TestFetchFeatureType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".das") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, sampleDAS)
	}))
	defer srv.Close()

	typer := Typer(2 * time.Second)
	ft, err := typer(srv.URL + "/dataset/buoy")
	if err != nil {
		t.Fatalf("fetching feature type: %v", err)
	}
	if ft != "timeSeries" {
		t.Fatalf("got feature type %q, expected timeSeries", ft)
	}
}

func TestFetchFeatureTypeAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Attributes {\n    NC_GLOBAL {\n        String title \"no geometry here\";\n    }\n}\n")
	}))
	defer srv.Close()

	ft, err := Typer(2*time.Second)(srv.URL + "/dataset/grid")
	if err != nil {
		t.Fatalf("fetching feature type: %v", err)
	}
	if ft != "" {
		t.Fatalf("got feature type %q, expected empty", ft)
	}
}

func TestFetchFeatureTypeBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := Typer(2 * time.Second)(srv.URL + "/dataset/broken"); err == nil {
		t.Fatal("expected an error on a 500 response")
	}
}

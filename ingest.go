package mdk

import (
	"io"
	"time"
)

// Source is the interface for getting metadata records one at a time.
// Record returns io.EOF when the source is exhausted. A non-EOF error
// applies to that record only; the source remains usable.
type Source interface {
	Record() (*Record, error)
}

// Indexer is the narrow interface to the document store. Add, Search and
// Delete are blocking, synchronous calls with no retry here; failures
// surface to the caller. Close flushes and commits whatever is pending.
type Indexer interface {
	Add(docs ...Document) error
	Search(id string) ([]Document, error)
	Delete(id string) error
	Close() error
}

// FeatureTyper resolves the sampling-geometry label for a dataset from its
// access url. Implemented by the opendap sub-package.
type FeatureTyper func(accessURL string) (string, error)

// Thumbnailer renders a base64 map thumbnail for a dataset from its map
// service url. Implemented by the wms sub-package; rendering configuration
// is bound into the function by the caller, not carried as shared state.
type Thumbnailer func(mapServiceURL string) (string, error)

// Ingester runs the pipeline: pull records from a Source, transform each
// into a Document, resolve the optional collaborator fields, and hand the
// result to the Indexer - linking through the parent for child-level runs.
// Processing is single-threaded and record-at-a-time; a failed record is
// logged, counted and skipped, never aborting the batch.
type Ingester struct {
	Level       int
	FeatureType FeatureTyper
	Thumbnail   Thumbnailer
	Stats       Statter
	Log         Logger

	src    Source
	trans  *Transformer
	linker *Linker
	idx    Indexer
}

// NewIngester returns an Ingester over the given stages, defaulting to
// parent-level ingestion with silent stats and logging.
func NewIngester(src Source, trans *Transformer, idx Indexer) *Ingester {
	return &Ingester{
		Level:  LevelParent,
		Stats:  NopStatter{},
		Log:    NopLogger{},
		src:    src,
		trans:  trans,
		linker: &Linker{},
		idx:    idx,
	}
}

// Run ingests records until the source is exhausted, then closes the
// indexer. The returned error reflects only the final flush; per-record
// failures are logged and counted.
func (n *Ingester) Run() error {
	n.trans.Log = n.Log
	n.linker.Log = n.Log
	for {
		rec, err := n.src.Record()
		if err == io.EOF {
			break
		}
		n.Stats.Count("records", 1, 1)
		if err != nil {
			n.Log.Printf("couldn't read record: %v", err)
			n.Stats.Count("errors", 1, 1)
			continue
		}
		start := time.Now()
		if ok := n.ingestOne(rec); ok {
			n.Stats.Count("indexed", 1, 1)
		} else {
			n.Stats.Count("skipped", 1, 1)
		}
		n.Stats.Timing("record", time.Since(start), 1)
	}
	return n.idx.Close()
}

func (n *Ingester) ingestOne(rec *Record) bool {
	doc, err := n.trans.Transform(rec, n.Level)
	if err != nil {
		if IsMissingSpatialBounds(err) {
			n.Log.Printf("record %s has no usable spatial bounds, skipping", rec.Path)
		} else {
			n.Log.Printf("couldn't transform record %s: %v", rec.Path, err)
		}
		return false
	}
	if doc.String("metadata_status") == statusInactive {
		n.Log.Printf("record %s is inactive, skipping", doc.ID())
		return false
	}

	if url := doc.String("data_access_url_opendap"); url != "" && n.FeatureType != nil {
		ft, err := n.FeatureType(url)
		if err != nil {
			// Non-fatal: the field is simply omitted.
			n.Log.Printf("couldn't retrieve feature type for %s: %v", doc.ID(), err)
		} else {
			doc.Set("feature_type", NormalizeFeatureType(ft, n.Log))
		}
	}

	if url := doc.String("data_access_url_ogc_wms"); url != "" && n.Thumbnail != nil {
		thumb, err := n.Thumbnail(url)
		if err != nil || thumb == "" {
			// A WMS endpoint that can't produce a capabilities document
			// isn't worth advertising.
			n.Log.Printf("couldn't render thumbnail for %s: %v", doc.ID(), err)
			doc.Delete("data_access_url_ogc_wms")
		} else {
			doc.Set("thumbnail_data", thumb)
		}
	}

	if n.Level == LevelChild {
		outcome, err := n.linker.LinkChild(doc, n.idx.Search, func(d Document) error {
			return n.idx.Add(d)
		})
		if err != nil {
			n.Log.Printf("store failure linking %s: %v", doc.ID(), err)
			n.Stats.Count("errors", 1, 1)
			return false
		}
		if outcome != Linked {
			n.Stats.Count("linkskipped", 1, 1)
			return false
		}
		return true
	}

	if err := n.idx.Add(doc); err != nil {
		n.Log.Printf("store failure adding %s: %v", doc.ID(), err)
		n.Stats.Count("errors", 1, 1)
		return false
	}
	return true
}

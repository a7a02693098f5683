package metadata

import (
	"log"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/metsearch/mdk"
	"github.com/metsearch/mdk/boltdb"
	"github.com/metsearch/mdk/opendap"
	"github.com/metsearch/mdk/solr"
	"github.com/metsearch/mdk/termstat"
	"github.com/metsearch/mdk/wms"
)

// Main contains the configuration for ingesting metadata XML files into
// the index.
type Main struct {
	Path    string `help:"File or directory of metadata XML files to ingest."`
	SolrURL string `help:"Base URL of the Solr server."`
	Core    string `help:"Solr core holding the dataset documents."`
	Level   int    `help:"Dataset level: 1 for parent/standalone records, 2 for child records."`

	Thumbnail     bool    `help:"Render a WMS map thumbnail for datasets advertising a WMS endpoint."`
	WMSLayer      string  `help:"Preferred WMS layer for thumbnails (falls back to the first available)."`
	WMSStyle      string  `help:"Preferred WMS style for thumbnails (falls back to the first available)."`
	WMSZoom       float64 `help:"Padding in degrees subtracted/added around the layer extent."`
	WMSProjection string  `help:"Projection (CRS) requested from the WMS service."`
	WMSTimeout    int     `help:"WMS request timeout in seconds."`

	FeatureType    bool   `help:"Resolve the feature type of datasets advertising an OPeNDAP endpoint."`
	LedgerPath     string `help:"Optional bolt ledger file; unchanged files recorded there are skipped."`
	GeohashChars   uint   `help:"Precision of the centroid geohash facet."`
	OpendapTimeout int    `help:"OPeNDAP request timeout in seconds."`
}

// NewMain gets a Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Path:           ".",
		SolrURL:        "http://localhost:8983/solr",
		Core:           "datasets",
		Level:          mdk.LevelParent,
		WMSProjection:  "CRS:84",
		WMSTimeout:     120,
		GeohashChars:   6,
		OpendapTimeout: 30,
	}
}

// Run runs the ingester over the configured path.
func (m *Main) Run() error {
	var skip SkipFunc
	var ledger *boltdb.Ledger
	if m.LedgerPath != "" {
		var err error
		ledger, err = boltdb.NewLedger(m.LedgerPath)
		if err != nil {
			return errors.Wrap(err, "opening ledger")
		}
		defer ledger.Close()
		skip = func(path string, info os.FileInfo) bool {
			if !ledger.Changed(path, info.ModTime(), info.Size()) {
				log.Printf("skipping unchanged file %s", path)
				return true
			}
			return false
		}
	}

	src, err := NewSource(OptSrcPath(m.Path), OptSrcSkip(skip))
	if err != nil {
		return errors.Wrap(err, "getting metadata source")
	}

	idx, err := solr.NewClient(m.SolrURL, m.Core)
	if err != nil {
		return errors.Wrap(err, "setting up Solr")
	}

	trans := mdk.NewTransformer()
	trans.GeohashPrecision = m.GeohashChars

	ingester := mdk.NewIngester(src, trans, idx)
	ingester.Level = m.Level
	ingester.Log = mdk.StdLogger{Logger: log.New(os.Stderr, "", log.LstdFlags)}
	stats := termstat.NewCollector(os.Stdout)
	defer stats.Stop()
	ingester.Stats = stats

	if m.FeatureType {
		ingester.FeatureType = opendap.Typer(time.Duration(m.OpendapTimeout) * time.Second)
	}
	if m.Thumbnail {
		ingester.Thumbnail = wms.Thumbnailer(wms.Config{
			Layer:       m.WMSLayer,
			Style:       m.WMSStyle,
			ZoomPadding: m.WMSZoom,
			Projection:  m.WMSProjection,
			Timeout:     time.Duration(m.WMSTimeout) * time.Second,
		})
	}

	if err := ingester.Run(); err != nil {
		return errors.Wrap(err, "running ingester")
	}

	if ledger != nil {
		if err := markIngested(ledger, m.Path); err != nil {
			return errors.Wrap(err, "updating ledger")
		}
	}
	return nil
}

// markIngested records every file under path in the ledger so the next
// run can skip the ones that haven't changed since.
func markIngested(ledger *boltdb.Ledger, path string) error {
	files, err := ListFiles(path)
	if err != nil {
		return err
	}
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return err
		}
		if err := ledger.Mark(f, info.ModTime(), info.Size()); err != nil {
			return err
		}
	}
	return nil
}

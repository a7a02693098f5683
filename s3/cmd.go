package s3

import (
	"log"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/metsearch/mdk"
	"github.com/metsearch/mdk/opendap"
	"github.com/metsearch/mdk/solr"
	"github.com/metsearch/mdk/termstat"
)

// Main contains the configuration for ingesting metadata XML objects
// from an S3 bucket into the index.
type Main struct {
	Bucket string `help:"S3 bucket holding metadata XML objects."`
	Region string `help:"AWS region of the bucket."`
	Prefix string `help:"Only ingest objects whose key matches this prefix."`

	SolrURL string `help:"Base URL of the Solr server."`
	Core    string `help:"Solr core holding the dataset documents."`
	Level   int    `help:"Dataset level: 1 for parent/standalone records, 2 for child records."`

	FeatureType    bool `help:"Resolve the feature type of datasets advertising an OPeNDAP endpoint."`
	GeohashChars   uint `help:"Precision of the centroid geohash facet."`
	OpendapTimeout int  `help:"OPeNDAP request timeout in seconds."`
}

// NewMain gets a Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Region:         "us-east-1",
		SolrURL:        "http://localhost:8983/solr",
		Core:           "datasets",
		Level:          mdk.LevelParent,
		GeohashChars:   6,
		OpendapTimeout: 30,
	}
}

// Run ingests every listed object in the bucket.
func (m *Main) Run() error {
	src, err := NewSource(OptSrcBucket(m.Bucket), OptSrcRegion(m.Region), OptSrcPrefix(m.Prefix))
	if err != nil {
		return errors.Wrap(err, "getting s3 source")
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

	return errors.Wrap(ingester.Run(), "running ingester")
}

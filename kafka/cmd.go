package kafka

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

// Main contains the configuration for ingesting metadata documents
// arriving on a kafka topic.
type Main struct {
	Hosts   []string `help:"Comma separated list of Kafka hosts and ports."`
	Topics  []string `help:"Comma separated list of Kafka topics carrying metadata XML."`
	Group   string   `help:"Kafka consumer group."`
	MaxMsgs int      `help:"Stop after this many messages. 0 consumes forever."`

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
		Hosts:          []string{"localhost:9092"},
		Topics:         []string{"mmd"},
		Group:          "group0",
		SolrURL:        "http://localhost:8983/solr",
		Core:           "datasets",
		Level:          mdk.LevelParent,
		GeohashChars:   6,
		OpendapTimeout: 30,
	}
}

// Run consumes the topic until the message limit (if any) is reached.
func (m *Main) Run() error {
	src := NewSource()
	src.Hosts = m.Hosts
	src.Topics = m.Topics
	src.Group = m.Group
	src.MaxMsgs = m.MaxMsgs
	if err := src.Open(); err != nil {
		return errors.Wrap(err, "opening kafka source")
	}
	defer src.Close()

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

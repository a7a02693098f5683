// Package kafka provides an mdk.Source reading metadata documents from a
// kafka topic. Each message value is one complete MMD XML document.
package kafka

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"

	"github.com/Shopify/sarama"
	cluster "github.com/bsm/sarama-cluster"
	"github.com/pkg/errors"

	"github.com/metsearch/mdk"
	"github.com/metsearch/mdk/metadata"
)

// Source consumes XML metadata messages from kafka.
type Source struct {
	Hosts   []string
	Topics  []string
	Group   string
	MaxMsgs int
	numMsgs int

	consumer *cluster.Consumer
}

// NewSource gets a new Source with local single-broker defaults.
func NewSource() *Source {
	return &Source{
		Hosts:  []string{"localhost:9092"},
		Topics: []string{"mmd"},
		Group:  "group0",
	}
}

// Record returns the next message decoded as a metadata record. A message
// that fails to decode returns an error and is still marked consumed; the
// source remains usable for the next call.
func (s *Source) Record() (*mdk.Record, error) {
	if s.MaxMsgs > 0 {
		s.numMsgs++
		if s.numMsgs > s.MaxMsgs {
			return nil, io.EOF
		}
	}
	msg, ok := <-s.consumer.Messages()
	if !ok {
		return nil, io.EOF
	}
	s.consumer.MarkOffset(msg, "")
	path := fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	rec, err := metadata.Decode(msg.Value, path)
	return rec, errors.Wrapf(err, "decoding message at %s", path)
}

// Open initializes the kafka consumer.
func (s *Source) Open() error {
	sarama.Logger = log.New(ioutil.Discard, "", 0)
	config := cluster.NewConfig()
	config.Config.Version = sarama.V0_10_0_0
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Group.Return.Notifications = true

	var err error
	s.consumer, err = cluster.NewConsumer(s.Hosts, s.Group, s.Topics, config)
	if err != nil {
		return errors.Wrap(err, "getting new consumer")
	}

	go func() {
		for err := range s.consumer.Errors() {
			log.Printf("Error: %s\n", err.Error())
		}
	}()
	go func() {
		for ntf := range s.consumer.Notifications() {
			log.Printf("Rebalanced: %+v\n", ntf)
		}
	}()
	return nil
}

// Close closes the underlying kafka consumer.
func (s *Source) Close() error {
	err := s.consumer.Close()
	return errors.Wrap(err, "closing kafka consumer")
}

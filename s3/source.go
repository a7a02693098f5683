// Package s3 provides an mdk.Source reading metadata documents from an
// S3 bucket. Each object is one complete MMD XML document.
package s3

import (
	"io"
	"io/ioutil"
	"sync/atomic"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"

	"github.com/metsearch/mdk"
	"github.com/metsearch/mdk/metadata"
)

// SrcOption is a functional option type for s3.Source.
type SrcOption func(s *Source)

// OptSrcBucket is a SrcOption which sets the S3 bucket for a Source.
func OptSrcBucket(bucket string) SrcOption {
	return func(s *Source) {
		s.bucket = bucket
	}
}

// OptSrcRegion is a SrcOption which sets the AWS region for a Source.
func OptSrcRegion(region string) SrcOption {
	return func(s *Source) {
		s.region = region
	}
}

// OptSrcPrefix tells the source to list only the objects in the bucket
// that match the specified prefix.
func OptSrcPrefix(prefix string) SrcOption {
	return func(s *Source) {
		s.prefix = prefix
	}
}

// Source reads metadata records from the objects of an S3 bucket, one
// record per object, in listing order.
type Source struct {
	bucket string
	prefix string
	region string

	s3      *awss3.S3
	sess    *session.Session
	objects []*awss3.Object
	objIdx  *uint64
}

// NewSource returns a new Source with the options applied. The bucket is
// listed once up front; objects created after that are not seen.
func NewSource(opts ...SrcOption) (*Source, error) {
	idx := uint64(0)
	s := &Source{objIdx: &idx}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	s.sess, err = session.NewSession(&aws.Config{
		Region: aws.String(s.region)},
	)
	if err != nil {
		return nil, errors.Wrap(err, "getting aws session")
	}
	s.s3 = awss3.New(s.sess)
	resp, err := s.s3.ListObjects(&awss3.ListObjectsInput{Bucket: aws.String(s.bucket), Prefix: aws.String(s.prefix)})
	if err != nil {
		return nil, errors.Wrap(err, "listing objects")
	}
	s.objects = resp.Contents

	return s, nil
}

// Record fetches and decodes the next object. An object that fails to
// fetch or decode returns an error; the source stays usable and the next
// call moves on to the following object.
func (s *Source) Record() (*mdk.Record, error) {
	idx := atomic.AddUint64(s.objIdx, 1) - 1
	if int(idx) >= len(s.objects) {
		return nil, io.EOF
	}
	key := *s.objects[idx].Key

	result, err := s.s3.GetObject(&awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %v", key)
	}
	defer result.Body.Close()
	raw, err := ioutil.ReadAll(result.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %v", key)
	}

	rec, err := metadata.Decode(raw, s.bucket+"/"+key)
	return rec, errors.Wrapf(err, "decoding %v", key)
}

// Package metadata reads dataset discovery metadata records from XML
// files and decodes them into mdk Records.
package metadata

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/clbanning/mxj"
	"github.com/pkg/errors"

	"github.com/metsearch/mdk"
)

// Decode turns one raw metadata XML document into a Record. The XML is
// decoded into a generic tree; namespace prefixes are stripped from
// element and attribute names so field logic addresses bare names. The
// raw bytes are retained for the provenance blob.
func Decode(raw []byte, path string) (*mdk.Record, error) {
	m, err := mxj.NewMapXml(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	tree := map[string]interface{}(m)
	if len(tree) != 1 {
		return nil, errors.Errorf("expected a single root element in %s, got %d", path, len(tree))
	}
	var body interface{}
	for _, v := range tree {
		body = v
	}
	stripped, ok := stripPrefixes(body).(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("root element of %s is not a container", path)
	}
	return mdk.NewRecord(stripped, raw, path), nil
}

// stripPrefixes rewrites every element and attribute key to its local
// name, dropping the namespace prefix, recursively. The mxj markers (the
// leading attribute dash and the #text key) are preserved.
func stripPrefixes(v interface{}) interface{} {
	switch vt := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(vt))
		for k, sub := range vt {
			out[stripKey(k)] = stripPrefixes(sub)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(vt))
		for i, sub := range vt {
			out[i] = stripPrefixes(sub)
		}
		return out
	default:
		return v
	}
}

func stripKey(k string) string {
	if k == "#text" {
		return k
	}
	attr := strings.HasPrefix(k, "-")
	name := strings.TrimPrefix(k, "-")
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	if attr {
		return "-" + name
	}
	return name
}

// SkipFunc lets a caller filter files before they are read, e.g. to skip
// files a previous run already ingested unchanged.
type SkipFunc func(path string, info os.FileInfo) bool

// Source is a mdk.Source which decodes metadata records from an XML file
// or all XML files in a directory.
type Source struct {
	files   []string
	skip    SkipFunc
	records chan record
}

type record struct {
	rec *mdk.Record
	err error
}

// SrcOption is a functional option for the metadata Source.
type SrcOption func(s *Source) error

// OptSrcPath sets the file or directory to read records from.
func OptSrcPath(pathname string) SrcOption {
	return func(s *Source) (err error) {
		s.files, err = ListFiles(pathname)
		return err
	}
}

// ListFiles resolves a path to the metadata XML files beneath it: the file
// itself, or every .xml file directly in the directory.
func ListFiles(pathname string) ([]string, error) {
	info, err := os.Stat(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "statting path")
	}
	if !info.IsDir() {
		return []string{pathname}, nil
	}
	infos, err := ioutil.ReadDir(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "reading directory")
	}
	var files []string
	for _, fi := range infos {
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), ".xml") {
			continue
		}
		files = append(files, filepath.Join(pathname, fi.Name()))
	}
	return files, nil
}

// OptSrcSkip installs a file filter.
func OptSrcSkip(skip SkipFunc) SrcOption {
	return func(s *Source) error {
		s.skip = skip
		return nil
	}
}

// NewSource gets a new metadata source with the options applied.
func NewSource(opts ...SrcOption) (*Source, error) {
	s := &Source{
		records: make(chan record, 16),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	go s.run()
	return s, nil
}

func (s *Source) run() {
	for _, path := range s.files {
		if s.skip != nil {
			if info, err := os.Stat(path); err == nil && s.skip(path, info) {
				continue
			}
		}
		raw, err := ioutil.ReadFile(path)
		if err != nil {
			s.records <- record{err: errors.Wrapf(err, "reading %s", path)}
			continue
		}
		rec, err := Decode(raw, path)
		s.records <- record{rec: rec, err: err}
	}
	close(s.records)
}

// Record implements mdk.Source. It returns io.EOF once every file has
// been handed out; a per-file failure comes back as that record's error.
func (s *Source) Record() (*mdk.Record, error) {
	r, ok := <-s.records
	if !ok {
		return nil, io.EOF
	}
	return r.rec, r.err
}

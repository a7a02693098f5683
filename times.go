package mdk

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// solrTimeLayout is the timestamp form the index schema requires.
const solrTimeLayout = "2006-01-02T15:04:05Z"

// timeLayouts are tried in order when parsing timestamps from records.
// Input is assumed to already be UTC or naive-UTC; no zone conversion is
// ever performed.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// Reduction seeds: any real timestamp in a record is before the far-future
// minimum candidate and after the far-past maximum candidate.
var (
	extentMinSeed = time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	extentMaxSeed = time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)
)

// ParseTimestamp parses one of the heterogeneous date representations the
// source schema allows.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unparseable timestamp %q", s)
}

// FormatTimestamp renders t in the index schema's timestamp form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(solrTimeLayout)
}

// EnsureUTC appends the UTC marker to a timestamp that lacks one. The value
// is not converted, only marked; input without a zone is taken to be UTC
// already.
func EnsureUTC(s string) string {
	if s == "" || strings.HasSuffix(s, "Z") {
		return s
	}
	return s + "Z"
}

// NormalizeDate maps the schema's "unknown" placeholders to the empty
// string and reformats anything parseable into the index timestamp form.
// An unparseable value is returned UTC-marked rather than dropped; the
// caller decides whether to log it.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return ""
	}
	if t, err := ParseTimestamp(s); err == nil {
		return FormatTimestamp(t)
	}
	return EnsureUTC(s)
}

// ReduceExtent derives the overall start/end pair across every timestamp
// found in a set of temporal extents. The reduction is seeded with a
// far-future minimum candidate and a far-past maximum candidate; a value
// that fails to parse is logged and skipped rather than aborting the
// record. Both results are empty when nothing parseable was present.
func ReduceExtent(values []string, lg Logger) (start, end string) {
	if lg == nil {
		lg = NopLogger{}
	}
	min, max := extentMinSeed, extentMaxSeed
	n := 0
	for _, v := range values {
		if v == "" || v == "--" {
			continue
		}
		t, err := ParseTimestamp(v)
		if err != nil {
			lg.Printf("date format could not be parsed: %v", err)
			continue
		}
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
		n++
	}
	if n == 0 {
		return "", ""
	}
	return FormatTimestamp(min), FormatTimestamp(max)
}

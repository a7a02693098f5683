package mdk

import (
	"fmt"
	"strconv"

	"github.com/mmcloughlin/geohash"
)

// Rectangle is one geographic extent rectangle from a record. Bounds are
// degrees, longitudes positive eastward in [-180,180]. A nil bound was
// absent or unparseable in the source.
type Rectangle struct {
	North *float64
	South *float64
	East  *float64
	West  *float64
	SRS   string
}

// Extent is the single derived bounding box for a record. Invariant:
// North >= South.
type Extent struct {
	North float64
	South float64
	East  float64
	West  float64
	SRS   string
}

// WorldExtent is the fallback when a record carries no geographic extent
// at all. Note that it silently matches every spatial query.
var WorldExtent = Extent{North: 90, South: -90, East: 180, West: -180}

// RectangleFrom reads the bounds of one rectangle element. Bounds that are
// absent or not numbers come back nil.
func RectangleFrom(v interface{}) Rectangle {
	return Rectangle{
		North: boundOf(v, "north"),
		South: boundOf(v, "south"),
		East:  boundOf(v, "east"),
		West:  boundOf(v, "west"),
		SRS:   Attr(v, "srsName"),
	}
}

func boundOf(v interface{}, name string) *float64 {
	s := Text(Child(v, name))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// DeriveExtent computes the single bounding box for a set of rectangles.
//
// One rectangle maps directly, and a missing bound is fatal for the
// record (ErrMissingSpatialBounds). More than one rectangle is flattened
// conservatively into the smallest enclosing box - the index schema has no
// multi-box representation, so this necessarily loses the true extent of
// non-contiguous sets; the loss is logged. Rectangles with missing bounds
// inside a multi-rectangle set merely contribute fewer points. No
// rectangles at all yields WorldExtent.
func DeriveExtent(rects []Rectangle, lg Logger) (Extent, error) {
	if lg == nil {
		lg = NopLogger{}
	}
	switch len(rects) {
	case 0:
		return WorldExtent, nil
	case 1:
		r := rects[0]
		if r.North == nil || r.South == nil || r.East == nil || r.West == nil {
			return Extent{}, ErrMissingSpatialBounds
		}
		return Extent{North: *r.North, South: *r.South, East: *r.East, West: *r.West, SRS: r.SRS}, nil
	}

	lg.Printf("multiple bounding boxes are not supported by the index schema, flattening to the enclosing box")
	var lats, lons []float64
	for _, r := range rects {
		for _, b := range []*float64{r.North, r.South} {
			if b != nil {
				lats = append(lats, *b)
			}
		}
		for _, b := range []*float64{r.East, r.West} {
			if b != nil {
				lons = append(lons, *b)
			}
		}
	}
	if len(lats) == 0 || len(lons) == 0 {
		return WorldExtent, nil
	}
	return Extent{
		North: maxOf(lats),
		South: minOf(lats),
		East:  maxOf(lons),
		West:  minOf(lons),
	}, nil
}

// Envelope renders the extent in the index's bounding box notation. The
// argument order is always (west, east, north, south).
func (e Extent) Envelope() string {
	return fmt.Sprintf("ENVELOPE(%s,%s,%s,%s)",
		formatDegree(e.West), formatDegree(e.East), formatDegree(e.North), formatDegree(e.South))
}

// IsPoint reports whether the extent degenerates to a single location.
func (e Extent) IsPoint() bool {
	return e.North == e.South && e.East == e.West
}

// WKT renders the vector geometry: a point when the extent degenerates to
// a single location, otherwise the axis-aligned rectangle polygon.
func (e Extent) WKT() string {
	if e.IsPoint() {
		return fmt.Sprintf("POINT (%s %s)", formatDegree(e.East), formatDegree(e.North))
	}
	w, s, x, n := formatDegree(e.West), formatDegree(e.South), formatDegree(e.East), formatDegree(e.North)
	return fmt.Sprintf("POLYGON ((%s %s, %s %s, %s %s, %s %s, %s %s))",
		w, s, w, n, x, n, x, s, w, s)
}

// Geohash buckets the extent's centroid for faceted spatial browsing.
func (e Extent) Geohash(precision uint) string {
	lat := (e.North + e.South) / 2
	lon := (e.East + e.West) / 2
	return geohash.EncodeWithPrecision(lat, lon, precision)
}

func formatDegree(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

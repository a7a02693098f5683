package mdk

import (
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

// Dataset levels. A parent-level record describes an aggregate dataset, a
// child-level record an individual dataset referencing its aggregate.
const (
	LevelParent = 1
	LevelChild  = 2
)

// notProvided is the placeholder for fields the schema wants populated in
// pairs or not at all.
const notProvided = "Not provided"

// statusInactive excludes a record from indexing.
const statusInactive = "Inactive"

// Transformer assembles one flat Document from one metadata record. It
// orchestrates validation, temporal and geographic reduction, and the
// repeated-group flattener, plus the field-specific handling that is not
// generic enough to share.
type Transformer struct {
	Validator *Validator
	Log       Logger

	// GeohashPrecision sets the length of the centroid geohash facet.
	GeohashPrecision uint
}

// NewTransformer returns a Transformer with the fixed schema tables and a
// silent logger.
func NewTransformer() *Transformer {
	return &Transformer{
		Validator:        NewValidator(),
		Log:              NopLogger{},
		GeohashPrecision: 6,
	}
}

// Transform builds the canonical document for rec at the given level.
// Field-level anomalies are recovered in place with defaults and warnings.
// The only per-record fatal condition is a single geographic rectangle
// with a missing bound: the returned document carries status Inactive and
// the error is ErrMissingSpatialBounds, so a batch caller can skip this
// record and continue. The store write is the caller's job.
func (t *Transformer) Transform(rec *Record, level int) (Document, error) {
	if level != LevelParent && level != LevelChild {
		return nil, errors.Errorf("invalid dataset level %d", level)
	}
	t.Validator.Log = t.Log
	t.Validator.Validate(rec)

	doc := Document{}

	rawID := rec.Identifier()
	doc.Set("id", SanitizeID(rawID))
	doc.Set("metadata_identifier", rawID)

	t.lastMetadataUpdate(doc, rec)
	doc.Set("metadata_status", Text(rec.Field("metadata_status")))
	flattenList(doc, rec, "collection")
	t.languageSelected(doc, rec, "title")
	t.languageSelected(doc, rec, "abstract")
	t.temporalExtent(doc, rec)

	if err := t.geographicExtent(doc, rec); err != nil {
		doc.Set("metadata_status", statusInactive)
		return doc, err
	}

	for _, f := range []string{"dataset_production_status", "dataset_language", "operational_status", "access_constraint"} {
		if rec.Has(f) {
			doc.Set(f, Text(rec.Field(f)))
		}
	}
	t.useConstraint(doc, rec)

	flattenPersonnel(doc, rec, t.Log)
	flattenGroup(doc, "data_center", Items(rec.Field("data_center")), false, nil)
	t.dataAccess(doc, rec)
	t.relatedDataset(doc, rec)
	t.storageInformation(doc, rec)
	flattenRelatedInformation(doc, rec)
	flattenList(doc, rec, "iso_topic_category")
	flattenKeywords(doc, rec, t.Log)
	flattenProjects(doc, rec)
	t.platforms(doc, rec)
	flattenList(doc, rec, "activity_type")
	flattenGroup(doc, "dataset_citation", Items(rec.Field("dataset_citation")), false, citationValue)
	if rec.Has("quality_control") {
		doc.Set("quality_control", Text(rec.Field("quality_control")))
	}

	// The verbatim source document rides along for provenance and
	// reconstruction.
	doc.Set("metadata_xml_b64", base64.StdEncoding.EncodeToString(rec.Raw))

	if level == LevelChild {
		doc.Set("dataset_type", "Level-2")
	} else {
		doc.Set("dataset_type", "Level-1")
		// Initial default; the Linker flips it when a child arrives.
		doc.Set("isParent", "false")
	}
	return doc, nil
}

// lastMetadataUpdate flattens the update-event history into three aligned
// families. Timestamps lacking the UTC marker get one appended.
func (t *Transformer) lastMetadataUpdate(doc Document, rec *Record) {
	lmu := rec.Field("last_metadata_update")
	if lmu == nil {
		return
	}
	updates := Items(Child(lmu, "update"))
	if len(updates) == 0 {
		// Legacy single-value form.
		if s := Text(lmu); s != "" && s != unknownValue {
			doc.Set("last_metadata_update_datetime", []interface{}{EnsureUTC(s)})
		}
		return
	}
	var datetimes, types, notes []interface{}
	for _, u := range updates {
		datetimes = append(datetimes, EnsureUTC(Text(Child(u, "datetime"))))
		types = append(types, Text(Child(u, "type")))
		if n := Child(u, "note"); n != nil {
			notes = append(notes, Text(n))
		}
	}
	doc.Set("last_metadata_update_datetime", datetimes)
	doc.Set("last_metadata_update_type", types)
	doc.Set("last_metadata_update_note", notes)
}

// languageSelected picks the English-tagged variant among repeated
// language alternatives. A sole value without any language tag is accepted
// as-is.
func (t *Transformer) languageSelected(doc Document, rec *Record, field string) {
	items := Items(rec.Field(field))
	if len(items) == 0 {
		return
	}
	for _, item := range items {
		if Attr(item, "lang") == "en" {
			doc.Set(field, Text(item))
			return
		}
	}
	if len(items) == 1 && Attr(items[0], "lang") == "" {
		doc.Set(field, Text(items[0]))
		return
	}
	t.Log.Printf("no English %s variant found", field)
}

// temporalExtent reduces the record's temporal extents to one start/end
// pair. Multiple extents reduce to the overall min/max; placeholders for
// "unknown" normalize to empty rather than erroring.
func (t *Transformer) temporalExtent(doc Document, rec *Record) {
	extents := Items(rec.Field("temporal_extent"))
	if len(extents) == 0 {
		return
	}
	if len(extents) == 1 {
		start := NormalizeDate(Text(Child(extents[0], "start_date")))
		end := NormalizeDate(Text(Child(extents[0], "end_date")))
		doc.Set("temporal_extent_start_date", start)
		if end != "" {
			doc.Set("temporal_extent_end_date", end)
		}
		return
	}
	var values []string
	for _, e := range extents {
		values = append(values,
			NormalizeDate(Text(Child(e, "start_date"))),
			NormalizeDate(Text(Child(e, "end_date"))))
	}
	start, end := ReduceExtent(values, t.Log)
	if start != "" {
		doc.Set("temporal_extent_start_date", start)
		doc.Set("temporal_extent_end_date", end)
	}
}

// geographicExtent derives the bounding box fields, the envelope, the
// vector geometry and the centroid geohash facet.
func (t *Transformer) geographicExtent(doc Document, rec *Record) error {
	var rects []Rectangle
	for _, ge := range Items(rec.Field("geographic_extent")) {
		if r := Child(ge, "rectangle"); r != nil {
			rects = append(rects, RectangleFrom(r))
		}
	}
	ext, err := DeriveExtent(rects, t.Log)
	if err != nil {
		t.Log.Printf("missing geographical element, will not process %s", rec.Path)
		return err
	}
	doc.Set("geographic_extent_rectangle_north", ext.North)
	doc.Set("geographic_extent_rectangle_south", ext.South)
	doc.Set("geographic_extent_rectangle_east", ext.East)
	doc.Set("geographic_extent_rectangle_west", ext.West)
	if ext.SRS != "" {
		doc.Set("geographic_extent_rectangle_srsName", ext.SRS)
	}
	doc.Set("bbox", ext.Envelope())
	doc.Set("polygon_rpt", ext.WKT())
	if t.GeohashPrecision > 0 {
		doc.Set("location_geohash", ext.Geohash(t.GeohashPrecision))
	}
	return nil
}

// useConstraint requires the license identifier and resource to be present
// together; a half-populated pair is replaced by explicit placeholders.
func (t *Transformer) useConstraint(doc Document, rec *Record) {
	uc := rec.Field("use_constraint")
	if uc == nil {
		return
	}
	id := Text(Child(uc, "identifier"))
	res := Text(Child(uc, "resource"))
	if id != "" && res != "" {
		doc.Set("use_constraint_identifier", id)
		doc.Set("use_constraint_resource", res)
	} else {
		t.Log.Printf("both license identifier and resource are needed, substituting placeholders")
		doc.Set("use_constraint_identifier", notProvided)
		doc.Set("use_constraint_resource", notProvided)
	}
	if lt := Text(Child(uc, "license_text")); lt != "" {
		doc.Set("use_constraint_license_text", lt)
	}
}

// dataAccess maps each access element onto a protocol-qualified url field,
// and keeps the advertised WMS layers alongside the WMS endpoint.
func (t *Transformer) dataAccess(doc Document, rec *Record) {
	for _, da := range Items(rec.Field("data_access")) {
		typ := Text(Child(da, "type"))
		if typ == "" {
			continue
		}
		typ = strings.ToLower(strings.Replace(typ, " ", "_", -1))
		doc.Set("data_access_url_"+typ, Text(Child(da, "resource")))
		if typ == "ogc_wms" {
			if layers := Child(da, "wms_layers"); layers != nil {
				var names []interface{}
				for _, l := range Items(Child(layers, "wms_layer")) {
					names = append(names, Text(l))
				}
				if len(names) > 0 {
					doc.Set("data_access_wms_layers", names)
				}
			}
		}
	}
}

// relatedDataset extracts the parent reference. Only the parent-typed
// relation is interpreted; the reference is sanitized with the same id
// transform used for the document key.
func (t *Transformer) relatedDataset(doc Document, rec *Record) {
	items := Items(rec.Field("related_dataset"))
	if len(items) > 1 {
		t.Log.Printf("multiple related_dataset entries, interpreting only the parent relation")
	}
	for _, rd := range items {
		rel := Attr(rd, "relation_type")
		if rel != "parent" && !(rel == "" && len(items) == 1) {
			continue
		}
		if s := Text(rd); s != "" {
			doc.Set("related_dataset", SanitizeID(s))
			return
		}
	}
}

// storageInformation copies the file-level facts; each sub-field is
// independently optional, and the attributed pairs (size+unit,
// checksum+type) are only indexed complete.
func (t *Transformer) storageInformation(doc Document, rec *Record) {
	si := rec.Field("storage_information")
	if si == nil {
		return
	}
	if v := Text(Child(si, "file_name")); v != "" {
		doc.Set("storage_information_file_name", v)
	}
	if v := Text(Child(si, "file_location")); v != "" {
		doc.Set("storage_information_file_location", v)
	}
	if v := Text(Child(si, "file_format")); v != "" {
		doc.Set("storage_information_file_format", v)
	}
	if fs := Child(si, "file_size"); fs != nil {
		if unit := Attr(fs, "unit"); unit != "" {
			doc.Set("storage_information_file_size", Text(fs))
			doc.Set("storage_information_file_size_unit", unit)
		} else {
			t.Log.Printf("file size unit not specified, skipping field")
		}
	}
	if cs := Child(si, "checksum"); cs != nil {
		if typ := Attr(cs, "type"); typ != "" {
			doc.Set("storage_information_file_checksum", Text(cs))
			doc.Set("storage_information_file_checksum_type", typ)
		} else {
			t.Log.Printf("checksum type not specified, skipping field")
		}
	}
}

// platforms flattens platform entries and derives the satellite family
// facet from the first platform name.
func (t *Transformer) platforms(doc Document, rec *Record) {
	elems := Items(rec.Field("platform"))
	if len(elems) == 0 {
		return
	}
	flattenGroup(doc, "platform", elems, true, nil)
	names := doc.Strings("platform_long_name")
	if len(names) > 0 && strings.HasPrefix(names[0], "Sentinel") {
		doc.Set("platform_sentinel", names[0][:len(names[0])-1])
	}
}

// citationValue completes citation publication dates to full datetimes,
// which the index schema requires.
func citationValue(field, value string) string {
	if strings.HasSuffix(field, "_publication_date") && !strings.Contains(value, "T") {
		return value + "T12:00:00Z"
	}
	return value
}

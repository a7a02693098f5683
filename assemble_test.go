package mdk

import (
	"encoding/base64"
	"reflect"
	"strings"
	"testing"
)

func testTree() map[string]interface{} {
	return map[string]interface{}{
		"metadata_identifier": "no.met.adc:abc-123",
		"metadata_status":     "Active",
		"metadata_version":    "3",
		"title": []interface{}{
			map[string]interface{}{"#text": "Tittel", "-lang": "no"},
			map[string]interface{}{"#text": "Title", "-lang": "en"},
		},
		"abstract": map[string]interface{}{"#text": "An abstract.", "-lang": "en"},
		"last_metadata_update": map[string]interface{}{
			"update": []interface{}{
				map[string]interface{}{
					"datetime": "2020-01-01T10:00:00",
					"type":     "Created",
				},
				map[string]interface{}{
					"datetime": "2021-06-01T10:00:00Z",
					"type":     "Minor modification",
					"note":     "fixed keywords",
				},
			},
		},
		"temporal_extent": map[string]interface{}{
			"start_date": "2019-01-01",
			"end_date":   "--",
		},
		"geographic_extent": map[string]interface{}{
			"rectangle": map[string]interface{}{
				"-srsName": "EPSG:4326",
				"north":    "80",
				"south":    "70",
				"east":     "30",
				"west":     "10",
			},
		},
		"collection":         []interface{}{"ADC", "SIOS"},
		"iso_topic_category": "oceans",
		"keywords": map[string]interface{}{
			"-vocabulary": "GCMDSK",
			"keyword":     "EARTH SCIENCE > CRYOSPHERE",
		},
		"data_access": []interface{}{
			map[string]interface{}{
				"type":     "OPeNDAP",
				"resource": "https://thredds.example/dodsC/ds",
			},
			map[string]interface{}{
				"type":     "OGC WMS",
				"resource": "https://thredds.example/wms/ds",
				"wms_layers": map[string]interface{}{
					"wms_layer": []interface{}{"ice_concentration", "ice_edge"},
				},
			},
		},
		"use_constraint": map[string]interface{}{
			"identifier": "CC-BY-4.0",
			"resource":   "https://spdx.org/licenses/CC-BY-4.0",
		},
	}
}

func TestTransformBasics(t *testing.T) {
	raw := []byte("<mmd>source document</mmd>")
	rec := NewRecord(testTree(), raw, "test.xml")
	doc, err := NewTransformer().Transform(rec, LevelParent)
	if err != nil {
		t.Fatalf("transforming: %v", err)
	}

	if got := doc.ID(); got != "no-met-adc-abc-123" {
		t.Errorf("id = %q", got)
	}
	if got := doc.String("metadata_identifier"); got != "no.met.adc:abc-123" {
		t.Errorf("metadata_identifier = %q, must keep the raw form", got)
	}
	if got := doc.String("title"); got != "Title" {
		t.Errorf("title = %q, expected the English variant", got)
	}
	if got := doc.String("dataset_type"); got != "Level-1" {
		t.Errorf("dataset_type = %q", got)
	}
	if got := doc.String("isParent"); got != "false" {
		t.Errorf("isParent = %q", got)
	}

	if got := doc.Strings("last_metadata_update_datetime"); !reflect.DeepEqual(got,
		[]string{"2020-01-01T10:00:00Z", "2021-06-01T10:00:00Z"}) {
		t.Errorf("update datetimes = %v", got)
	}
	if got := doc.String("temporal_extent_start_date"); got != "2019-01-01T00:00:00Z" {
		t.Errorf("start date = %q", got)
	}
	if doc.Has("temporal_extent_end_date") {
		t.Error("an unknown end date must not produce a field")
	}

	if got := doc.String("bbox"); got != "ENVELOPE(10,30,80,70)" {
		t.Errorf("bbox = %q", got)
	}
	if got := doc.String("polygon_rpt"); !strings.HasPrefix(got, "POLYGON ((") {
		t.Errorf("polygon_rpt = %q", got)
	}
	if got := doc.String("geographic_extent_rectangle_srsName"); got != "EPSG:4326" {
		t.Errorf("srsName = %q", got)
	}
	if got := doc.String("location_geohash"); len(got) != 6 {
		t.Errorf("location_geohash = %q", got)
	}

	if got := doc.String("data_access_url_opendap"); got != "https://thredds.example/dodsC/ds" {
		t.Errorf("opendap url = %q", got)
	}
	if got := doc.Strings("data_access_wms_layers"); !reflect.DeepEqual(got, []string{"ice_concentration", "ice_edge"}) {
		t.Errorf("wms layers = %v", got)
	}

	if got := doc.String("use_constraint_identifier"); got != "CC-BY-4.0" {
		t.Errorf("use_constraint_identifier = %q", got)
	}

	decoded, err := base64.StdEncoding.DecodeString(doc.String("metadata_xml_b64"))
	if err != nil || string(decoded) != string(raw) {
		t.Errorf("metadata_xml_b64 does not round-trip the source bytes: %v", err)
	}
}

func TestTransformChildLevel(t *testing.T) {
	tree := testTree()
	tree["related_dataset"] = map[string]interface{}{
		"#text":          "no.met.adc:parent-1",
		"-relation_type": "parent",
	}
	doc, err := NewTransformer().Transform(NewRecord(tree, nil, "test.xml"), LevelChild)
	if err != nil {
		t.Fatalf("transforming: %v", err)
	}
	if got := doc.String("dataset_type"); got != "Level-2" {
		t.Errorf("dataset_type = %q", got)
	}
	if doc.Has("isParent") {
		t.Error("a child-level document must not carry an isParent default")
	}
	if got := doc.String("related_dataset"); got != "no-met-adc-parent-1" {
		t.Errorf("related_dataset = %q, expected the sanitized parent reference", got)
	}
}

func TestTransformInvalidLevel(t *testing.T) {
	if _, err := NewTransformer().Transform(NewRecord(testTree(), nil, "t.xml"), 3); err == nil {
		t.Fatal("expected an error for an invalid level")
	}
}

func TestTransformMissingBound(t *testing.T) {
	tree := testTree()
	tree["geographic_extent"] = map[string]interface{}{
		"rectangle": map[string]interface{}{
			"north": "80",
			"south": "70",
			"east":  "30",
			// west missing
		},
	}
	doc, err := NewTransformer().Transform(NewRecord(tree, nil, "t.xml"), LevelParent)
	if !IsMissingSpatialBounds(err) {
		t.Fatalf("got err %v, expected missing spatial bounds", err)
	}
	if got := doc.String("metadata_status"); got != "Inactive" {
		t.Errorf("metadata_status = %q, the record must be deactivated", got)
	}
}

func TestTransformNoExtentFallsBackToWorld(t *testing.T) {
	tree := testTree()
	delete(tree, "geographic_extent")
	doc, err := NewTransformer().Transform(NewRecord(tree, nil, "t.xml"), LevelParent)
	if err != nil {
		t.Fatalf("transforming: %v", err)
	}
	if got := doc.String("bbox"); got != "ENVELOPE(-180,180,90,-90)" {
		t.Errorf("bbox = %q, expected the world envelope", got)
	}
}

func TestTransformDefaultsMissingRequired(t *testing.T) {
	tree := testTree()
	delete(tree, "title")
	delete(tree, "dataset_production_status")
	doc, err := NewTransformer().Transform(NewRecord(tree, nil, "t.xml"), LevelParent)
	if err != nil {
		t.Fatalf("transforming: %v", err)
	}
	if got := doc.String("title"); got != "Unknown" {
		t.Errorf("title = %q, expected the Unknown default", got)
	}
	if got := doc.String("dataset_production_status"); got != "Unknown" {
		t.Errorf("dataset_production_status = %q", got)
	}
}

func TestTransformDefaultsEmptyRequired(t *testing.T) {
	tree := testTree()
	tree["title"] = ""
	doc, err := NewTransformer().Transform(NewRecord(tree, nil, "t.xml"), LevelParent)
	if err != nil {
		t.Fatalf("transforming: %v", err)
	}
	if got := doc.String("title"); got != "Unknown" {
		t.Errorf("title = %q, an empty element must be defaulted, not indexed empty", got)
	}
}

func TestTransformHalfUseConstraint(t *testing.T) {
	tree := testTree()
	tree["use_constraint"] = map[string]interface{}{"identifier": "CC-BY-4.0"}
	doc, err := NewTransformer().Transform(NewRecord(tree, nil, "t.xml"), LevelParent)
	if err != nil {
		t.Fatalf("transforming: %v", err)
	}
	if got := doc.String("use_constraint_identifier"); got != "Not provided" {
		t.Errorf("use_constraint_identifier = %q", got)
	}
	if got := doc.String("use_constraint_resource"); got != "Not provided" {
		t.Errorf("use_constraint_resource = %q", got)
	}
}

func TestTransformSentinelPlatform(t *testing.T) {
	tree := testTree()
	tree["platform"] = map[string]interface{}{
		"short_name": "S1A",
		"long_name":  "Sentinel-1A",
	}
	doc, err := NewTransformer().Transform(NewRecord(tree, nil, "t.xml"), LevelParent)
	if err != nil {
		t.Fatalf("transforming: %v", err)
	}
	if got := doc.String("platform_sentinel"); got != "Sentinel-1" {
		t.Errorf("platform_sentinel = %q", got)
	}
}

func TestCitationValue(t *testing.T) {
	if got := citationValue("dataset_citation_publication_date", "2020-01-15"); got != "2020-01-15T12:00:00Z" {
		t.Errorf("publication date completion = %q", got)
	}
	if got := citationValue("dataset_citation_publication_date", "2020-01-15T09:00:00Z"); got != "2020-01-15T09:00:00Z" {
		t.Errorf("full datetime must pass through, got %q", got)
	}
	if got := citationValue("dataset_citation_author", "Someone"); got != "Someone" {
		t.Errorf("non-date field must pass through, got %q", got)
	}
}

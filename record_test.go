package mdk

import (
	"reflect"
	"testing"
)

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"no:aa/bb.cc", "no-aa-bb-cc"},
		{"no.met.adc:b7cb7934-77ca-4439-812e-f560df3fe7eb", "no-met-adc-b7cb7934-77ca-4439-812e-f560df3fe7eb"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, test := range tests {
		if got := SanitizeID(test.in); got != test.out {
			t.Errorf("SanitizeID(%q) = %q, expected %q", test.in, got, test.out)
		}
		// Re-sanitizing an already sanitized id must be a no-op.
		if got := SanitizeID(SanitizeID(test.in)); got != test.out {
			t.Errorf("SanitizeID is not idempotent for %q: got %q", test.in, got)
		}
	}
}

func TestItems(t *testing.T) {
	if got := Items(nil); got != nil {
		t.Errorf("Items(nil) = %v, expected nil", got)
	}
	if got := Items("scalar"); !reflect.DeepEqual(got, []interface{}{"scalar"}) {
		t.Errorf("Items(scalar) = %v", got)
	}
	list := []interface{}{"a", "b"}
	if got := Items(list); !reflect.DeepEqual(got, list) {
		t.Errorf("Items(list) = %v", got)
	}
	obj := map[string]interface{}{"#text": "x"}
	if got := Items(obj); len(got) != 1 {
		t.Errorf("Items(object) = %v, expected single-element slice", got)
	}
}

func TestText(t *testing.T) {
	if got := Text(nil); got != "" {
		t.Errorf("Text(nil) = %q", got)
	}
	if got := Text("  padded  "); got != "padded" {
		t.Errorf("Text(padded) = %q", got)
	}
	attributed := map[string]interface{}{"#text": "value", "-lang": "en"}
	if got := Text(attributed); got != "value" {
		t.Errorf("Text(attributed) = %q", got)
	}
	if got := Text(map[string]interface{}{"-lang": "en"}); got != "" {
		t.Errorf("Text(attribute-only object) = %q, expected empty", got)
	}
}

func TestAttrAndChild(t *testing.T) {
	v := map[string]interface{}{
		"#text":     "Sea ice",
		"-lang":     "en",
		"rectangle": map[string]interface{}{"north": "80"},
	}
	if got := Attr(v, "lang"); got != "en" {
		t.Errorf("Attr(lang) = %q", got)
	}
	if got := Attr(v, "absent"); got != "" {
		t.Errorf("Attr(absent) = %q", got)
	}
	if got := Attr("scalar", "lang"); got != "" {
		t.Errorf("Attr on scalar = %q", got)
	}
	if got := Text(Child(Child(v, "rectangle"), "north")); got != "80" {
		t.Errorf("Child chain = %q", got)
	}
	if got := Child("scalar", "x"); got != nil {
		t.Errorf("Child on scalar = %v", got)
	}
}

func TestRecordFields(t *testing.T) {
	rec := NewRecord(map[string]interface{}{
		"metadata_identifier": "no:abc/def",
		"empty":               nil,
	}, []byte("<mmd/>"), "test.xml")

	if got := rec.Identifier(); got != "no:abc/def" {
		t.Errorf("Identifier() = %q", got)
	}
	if !rec.Has("metadata_identifier") {
		t.Error("Has(metadata_identifier) = false")
	}
	if rec.Has("empty") {
		t.Error("Has should be false for a present but nil field")
	}
	rec.SetField("title", "added")
	if got := Text(rec.Field("title")); got != "added" {
		t.Errorf("SetField round trip = %q", got)
	}
}

package mdk

import "strings"

// RequiredFields are the top level elements every record must carry. A
// missing or empty one is defaulted to "Unknown" rather than rejecting the
// record; temporal and spatial extents are deliberately not on this list
// since some communities legitimately omit them.
var RequiredFields = []string{
	"metadata_version",
	"metadata_identifier",
	"title",
	"abstract",
	"metadata_status",
	"dataset_production_status",
	"collection",
	"last_metadata_update",
	"iso_topic_category",
	"keywords",
}

// ControlledVocabularies maps a field name to its fixed set of legal
// values. Violations are logged, never rejected.
var ControlledVocabularies = map[string][]string{
	"iso_topic_category": {
		"farming",
		"biota",
		"boundaries",
		"climatologyMeteorologyAtmosphere",
		"economy",
		"elevation",
		"environment",
		"geoscientificInformation",
		"health",
		"imageryBaseMapsEarthCover",
		"inlandWaters",
		"location",
		"oceans",
		"planningCadastre",
		"society",
		"structure",
		"transportation",
		"utilitiesCommunication",
	},
	"collection": {
		"ACCESS",
		"ADC",
		"AeN",
		"APPL",
		"CC",
		"DAM",
		"DOKI",
		"GCW",
		"NBS",
		"NMAP",
		"NMDC",
		"NSDN",
		"SIOS",
		"SESS_2018",
		"SESS_2019",
		"SIOS_access_programme",
		"YOPP",
	},
	"dataset_production_status": {
		"Planned",
		"In Work",
		"Complete",
		"Obsolete",
	},
	"quality_control": {
		"No quality control",
		"Basic quality control",
		"Extended quality control",
		"Comprehensive quality control",
	},
}

// unknownValue is substituted for required fields that are absent or empty.
const unknownValue = "Unknown"

// Validator checks a record for required fields and controlled-vocabulary
// compliance. It corrects or flags, it never fails: every anomaly is
// recovered locally with a warning.
type Validator struct {
	Required []string
	Vocab    map[string][]string
	Log      Logger
}

// NewValidator returns a Validator with the fixed schema tables.
func NewValidator() *Validator {
	return &Validator{
		Required: RequiredFields,
		Vocab:    ControlledVocabularies,
		Log:      NopLogger{},
	}
}

// Validate checks rec, filling required-field defaults in place. It logs
// warnings for everything it finds and never returns an error.
func (v *Validator) Validate(rec *Record) {
	for _, field := range v.Required {
		if rec.Has(field) && !emptyElement(rec.Field(field)) {
			continue
		}
		v.Log.Printf("required element %s is missing, setting it to %s", field, unknownValue)
		rec.SetField(field, unknownValue)
	}

	for field, allowed := range v.Vocab {
		if !rec.Has(field) {
			continue
		}
		for _, item := range Items(rec.Field(field)) {
			val := Text(item)
			if val == "" {
				v.Log.Printf("%s contains an empty element", field)
				continue
			}
			if !contains(allowed, val) {
				v.Log.Printf("%s contains non valid content: %s", field, val)
			}
		}
	}

	v.checkGCMD(rec)
}

// checkGCMD warns when no keyword group is tagged with the GCMD science
// keywords vocabulary, since the GCMD facet field will come out empty.
func (v *Validator) checkGCMD(rec *Record) {
	for _, kw := range Items(rec.Field("keywords")) {
		if strings.EqualFold(Attr(kw, "vocabulary"), gcmdVocabulary) {
			return
		}
	}
	v.Log.Printf("keywords in GCMD are not available")
}

// emptyElement reports whether a decoded field value carries no content at
// all: an empty element like <title></title> decodes to "" (or to an
// attribute-only object), which counts as missing just like an absent one.
// A value with child elements or any text, in any of its repetitions, is
// content.
func emptyElement(v interface{}) bool {
	items := Items(v)
	if len(items) == 0 {
		return true
	}
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok && hasElements(m) {
			return false
		}
		if Text(item) != "" {
			return false
		}
	}
	return true
}

func contains(set []string, val string) bool {
	for _, s := range set {
		if s == val {
			return true
		}
	}
	return false
}

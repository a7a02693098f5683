package mdk

import (
	"fmt"
	"strings"
)

// Keys used by the XML decoder for element text and attributes. Attribute
// names carry a leading dash, matching the mxj convention used by the
// metadata source package.
const (
	textKey    = "#text"
	attrPrefix = "-"
)

// Record is one decoded metadata record. The tree is the decoded XML
// document (namespace prefixes stripped), Raw holds the verbatim source
// bytes for the provenance blob, and Path says where the record came from.
// A Record is built once per input and treated as read-only afterwards,
// except that the Validator may fill in required-field defaults.
type Record struct {
	Path string
	Raw  []byte

	tree map[string]interface{}
}

// NewRecord wraps an already-decoded metadata tree. The map is the body of
// the document's root element.
func NewRecord(tree map[string]interface{}, raw []byte, path string) *Record {
	if tree == nil {
		tree = make(map[string]interface{})
	}
	return &Record{Path: path, Raw: raw, tree: tree}
}

// Field returns the raw value of a top level field, or nil.
func (r *Record) Field(name string) interface{} {
	return r.tree[name]
}

// Has reports whether a top level field is present with a non-nil value.
func (r *Record) Has(name string) bool {
	v, ok := r.tree[name]
	return ok && v != nil
}

// SetField overwrites a top level field. Used by the Validator to fill
// required-field defaults.
func (r *Record) SetField(name string, v interface{}) {
	r.tree[name] = v
}

// Identifier returns the record's stated globally-unique identifier.
func (r *Record) Identifier() string {
	return Text(r.Field("metadata_identifier"))
}

// Items normalizes the "one-or-many" shape ambiguity of the source schema:
// a field may legally be absent, a scalar, an attributed object, or a list
// of any of those. Items turns all of them into a slice so field logic
// never branches on shape. All repeated-group handling goes through here.
func Items(v interface{}) []interface{} {
	switch vt := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return vt
	default:
		return []interface{}{v}
	}
}

// Text extracts the scalar value of a field which may be a bare scalar or
// an attributed object carrying its value under the text key. Absent and
// non-scalar values yield "".
func Text(v interface{}) string {
	switch vt := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(vt)
	case map[string]interface{}:
		if t, ok := vt[textKey]; ok {
			return Text(t)
		}
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(vt))
	}
}

// Attr returns the named attribute of an attributed value, or "".
func Attr(v interface{}, name string) string {
	m, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	return Text(m[attrPrefix+name])
}

// Child returns a named sub-element of an attributed or nested value.
func Child(v interface{}, name string) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return m[name]
}

var idSanitizer = strings.NewReplacer(":", "-", "/", "-", ".", "-")

// SanitizeID derives the index primary key from a metadata identifier by
// replacing the characters the index cannot accept in ids. The transform is
// deterministic and idempotent, which is what makes re-ingestion of the
// same record safe.
func SanitizeID(id string) string {
	return idSanitizer.Replace(id)
}

package mdk

// Document is the flat, index-ready representation of one dataset. Values
// are either scalars or ordered slices of scalars. Multi-valued field
// families which share a group qualifier are index-aligned: position i
// across the family describes the same sub-entity. That alignment is
// established by the flattener and must be preserved by anything that
// edits a Document.
type Document map[string]interface{}

// Set stores a scalar (or pre-built slice) field value.
func (d Document) Set(field string, v interface{}) {
	d[field] = v
}

// Add appends values to a multi-valued field, creating it if needed.
func (d Document) Add(field string, vals ...interface{}) {
	cur, _ := d[field].([]interface{})
	d[field] = append(cur, vals...)
}

// Has reports whether the field is present.
func (d Document) Has(field string) bool {
	_, ok := d[field]
	return ok
}

// Delete removes the field.
func (d Document) Delete(field string) {
	delete(d, field)
}

// String returns the field as a scalar string. Multi-valued fields yield
// their first element.
func (d Document) String(field string) string {
	switch v := d[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case []interface{}:
		if len(v) == 0 {
			return ""
		}
		return Text(v[0])
	case []string:
		if len(v) == 0 {
			return ""
		}
		return v[0]
	default:
		return Text(v)
	}
}

// Strings returns the field as a string slice regardless of whether it was
// stored as a scalar or a slice.
func (d Document) Strings(field string) []string {
	switch v := d[field].(type) {
	case nil:
		return nil
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, Text(e))
		}
		return out
	default:
		return []string{Text(v)}
	}
}

// ID returns the document's index primary key.
func (d Document) ID() string {
	return d.String("id")
}

// Clone returns a shallow copy with its own top level map, so field
// deletions and scalar overwrites do not touch the original.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

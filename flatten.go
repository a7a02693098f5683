package mdk

import "strings"

// gcmdVocabulary tags keyword groups that are mirrored into the dedicated
// GCMD facet field. Matched case-insensitively.
const gcmdVocabulary = "GCMDSK"

// wigosVocabulary is the WIGOS facet counterpart of gcmdVocabulary.
const wigosVocabulary = "WIGOS"

// roleSpec binds a personnel role label from the source vocabulary to the
// short code used to build role-qualified field names. The set is fixed:
// entries whose role is absent or not listed here are dropped with a
// warning, since the index schema has no "unknown role" bucket.
type roleSpec struct {
	Label string
	Code  string
}

var personnelRoles = []roleSpec{
	{"Investigator", "investigator"},
	{"Technical contact", "technical"},
	{"Metadata author", "metadata_author"},
	{"Data center contact", "datacenter"},
}

// personnelSubfields are the per-role field family suffixes. Every accepted
// personnel entry appends exactly one value (possibly a placeholder) to
// each, keeping the families index-aligned.
var personnelSubfields = []string{
	"role",
	"name",
	"email",
	"phone",
	"fax",
	"organisation",
	"address",
	"address_city",
	"address_province_or_state",
	"address_postal_code",
	"address_country",
}

var relatedInformationTypes = map[string]string{
	"Dataset landing page":   "landing_page",
	"Users guide":            "user_guide",
	"Project home page":      "home_page",
	"Observation facility":   "obs_facility",
	"Extended metadata":      "ext_metadata",
	"Scientific publication": "scientific_publication",
	"Data paper":             "data_paper",
	"Data management plan":   "data_management_plan",
	"Other documentation":    "other_documentation",
}

// roleCode resolves a role label, reporting whether it is recognized.
func roleCode(label string) (string, bool) {
	for _, r := range personnelRoles {
		if r.Label == label {
			return r.Code, true
		}
	}
	return "", false
}

// flattenPersonnel expands personnel entries into role-qualified field
// families plus the unqualified personnel_role/name/organisation facet
// families used for cross-role faceted search.
func flattenPersonnel(doc Document, rec *Record, lg Logger) {
	if !rec.Has("personnel") {
		return
	}

	doc.Set("personnel_role", []interface{}{})
	doc.Set("personnel_name", []interface{}{})
	doc.Set("personnel_organisation", []interface{}{})
	for _, r := range personnelRoles {
		for _, sub := range personnelSubfields {
			doc.Set("personnel_"+r.Code+"_"+sub, []interface{}{})
		}
	}

	for _, item := range Items(rec.Field("personnel")) {
		role := Text(Child(item, "role"))
		if role == "" {
			lg.Printf("no role available for personnel, skipping entry")
			continue
		}
		code, ok := roleCode(role)
		if !ok {
			lg.Printf("unrecognized role %q for personnel, skipping entry", role)
			continue
		}

		addr := Child(item, "contact_address")
		vals := map[string]string{
			"role":                      role,
			"name":                      Text(Child(item, "name")),
			"email":                     Text(Child(item, "email")),
			"phone":                     Text(Child(item, "phone")),
			"fax":                       Text(Child(item, "fax")),
			"organisation":              Text(Child(item, "organisation")),
			"address":                   Text(Child(addr, "address")),
			"address_city":              Text(Child(addr, "city")),
			"address_province_or_state": Text(Child(addr, "province_or_state")),
			"address_postal_code":       Text(Child(addr, "postal_code")),
			"address_country":           Text(Child(addr, "country")),
		}
		// Absent subfields still append a placeholder so every family for
		// this role stays the same length.
		for _, sub := range personnelSubfields {
			doc.Add("personnel_"+code+"_"+sub, vals[sub])
		}
		doc.Add("personnel_role", role)
		doc.Add("personnel_name", vals["name"])
		doc.Add("personnel_organisation", vals["organisation"])
	}
}

// flattenGroup expands a repeated group (data centers, platforms, dataset
// citations) into prefix-qualified parallel field families. With deep set,
// nested sub-elements keep their parent element in the field name
// (platform_instrument_short_name); without it they attach directly to the
// group prefix (data_center_short_name). Every instance appends one value
// per family, placeholdered when absent, so sibling families always align
// positionally.
func flattenGroup(doc Document, group string, elems []interface{}, deep bool, transform func(field, value string) string) {
	var names []string
	seen := map[string]bool{}
	flat := make([]map[string]string, len(elems))

	for i, elem := range elems {
		flat[i] = flattenElem(group, elem, deep)
		for name := range flat[i] {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	for _, vals := range flat {
		for _, name := range names {
			v := vals[name]
			if transform != nil && v != "" {
				v = transform(name, v)
			}
			doc.Add(name, v)
		}
	}
}

// flattenElem computes the field-name to value mapping for one group
// instance.
func flattenElem(group string, elem interface{}, deep bool) map[string]string {
	out := map[string]string{}
	m, ok := elem.(map[string]interface{})
	if !ok {
		return out
	}
	for key, val := range m {
		if strings.HasPrefix(key, attrPrefix) || key == textKey {
			continue
		}
		if sub, ok := val.(map[string]interface{}); ok && hasElements(sub) {
			for skey, sval := range sub {
				if strings.HasPrefix(skey, attrPrefix) || skey == textKey {
					continue
				}
				if deep {
					out[group+"_"+key+"_"+skey] = Text(sval)
				} else {
					out[group+"_"+skey] = Text(sval)
				}
			}
			continue
		}
		// Scalar subfield. Source element names may already carry the
		// group prefix (data_center_url); don't double it.
		name := group + "_" + key
		if key == group || strings.HasPrefix(key, group+"_") {
			name = key
		}
		out[name] = Text(val)
	}
	return out
}

// hasElements reports whether a decoded map carries child elements rather
// than being an attributed scalar.
func hasElements(m map[string]interface{}) bool {
	for k := range m {
		if !strings.HasPrefix(k, attrPrefix) && k != textKey {
			return true
		}
	}
	return false
}

// flattenKeywords expands every keyword group into the keyword and
// vocabulary families, and mirrors vocabulary-tagged keywords into the
// GCMD and WIGOS facet fields.
func flattenKeywords(doc Document, rec *Record, lg Logger) {
	if !rec.Has("keywords") {
		return
	}
	doc.Set("keywords_keyword", []interface{}{})
	doc.Set("keywords_vocabulary", []interface{}{})
	doc.Set("keywords_gcmd", []interface{}{})
	doc.Set("keywords_wigos", []interface{}{})

	for _, group := range Items(rec.Field("keywords")) {
		vocab := Attr(group, "vocabulary")
		kws := Items(Child(group, "keyword"))
		if len(kws) == 0 {
			lg.Debugf("skipping empty keyword group (vocabulary %q)", vocab)
			continue
		}
		for _, kw := range kws {
			s := Text(kw)
			if s == "" {
				continue
			}
			doc.Add("keywords_keyword", s)
			doc.Add("keywords_vocabulary", vocab)
			if strings.EqualFold(vocab, gcmdVocabulary) {
				doc.Add("keywords_gcmd", s)
			}
			if strings.EqualFold(vocab, wigosVocabulary) {
				doc.Add("keywords_wigos", s)
			}
		}
	}
}

// flattenProjects expands project entries, defaulting either name part to
// "Not provided" so the two families stay aligned.
func flattenProjects(doc Document, rec *Record) {
	doc.Set("project_short_name", []interface{}{})
	doc.Set("project_long_name", []interface{}{})
	if !rec.Has("project") {
		if _, ok := rec.tree["project"]; ok {
			// Present but empty element.
			doc.Add("project_short_name", notProvided)
			doc.Add("project_long_name", notProvided)
		}
		return
	}
	for _, p := range Items(rec.Field("project")) {
		short := Text(Child(p, "short_name"))
		long := Text(Child(p, "long_name"))
		if short == "" {
			short = notProvided
		}
		if long == "" {
			long = notProvided
		}
		doc.Add("project_short_name", short)
		doc.Add("project_long_name", long)
	}
}

// flattenRelatedInformation maps typed documentation links onto their
// dedicated url fields. Links with unrecognized types are ignored.
func flattenRelatedInformation(doc Document, rec *Record) {
	for _, ri := range Items(rec.Field("related_information")) {
		typ := Text(Child(ri, "type"))
		code, ok := relatedInformationTypes[typ]
		if !ok {
			continue
		}
		doc.Set("related_url_"+code, Text(Child(ri, "resource")))
		if desc := Text(Child(ri, "description")); desc != "" {
			doc.Set("related_url_"+code+"_desc", desc)
		}
	}
}

// flattenList copies a simple repeatable scalar field into a multi-valued
// document field.
func flattenList(doc Document, rec *Record, field string) {
	if !rec.Has(field) {
		return
	}
	doc.Set(field, []interface{}{})
	for _, item := range Items(rec.Field(field)) {
		doc.Add(field, Text(item))
	}
}

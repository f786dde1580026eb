// Package schema holds the C9 schema-variant policy table: per target
// MediaWiki version, the ordered column set for each output table and
// the default value for columns a given version doesn't have. Adding
// support for a new MW release means adding a table row here, per the
// design note in spec §9 ("prefer a data-driven policy table over
// conditional branches at emission sites").
package schema

import (
	"fmt"

	"github.com/wikidump/xml2sql/sqlwire"
)

// Column is one output column: its name, and the value to emit when the
// row producer has no real data source for it (e.g. page_random, which
// MediaWiki computes at runtime and this transducer never reconstructs).
// Default's own Value kind (string, int or null) already determines
// whether the column is NULL-quoted, bare, or a quoted string literal,
// so no separate null-quoting flag is needed.
type Column struct {
	Name    string
	Default sqlwire.Value
}

// Variant is the column layout and defaults for one target MW version.
type Variant struct {
	MWVersion       string
	PageColumns     []Column
	RevisionColumns []Column
	TextColumns     []Column
}

// MinInputSchema and MaxInputSchema bound the input XML export
// schema versions this transducer understands (spec §1, §4.4).
const (
	MinInputSchema = "0.5"
	MaxInputSchema = "0.10"
)

// SupportsInputSchema reports whether v falls within
// [MinInputSchema, MaxInputSchema]. Export schema versions are
// "0.<minor>": compare the minor component numerically, since "0.10"
// sorts before "0.5" as a plain string.
func SupportsInputSchema(v string) bool {
	minor, ok := schemaMinor(v)
	if !ok {
		return false
	}
	lo, _ := schemaMinor(MinInputSchema)
	hi, _ := schemaMinor(MaxInputSchema)
	return minor >= lo && minor <= hi
}

func schemaMinor(v string) (int, bool) {
	if len(v) < 3 || v[:2] != "0." {
		return 0, false
	}
	n := 0
	for _, c := range v[2:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// Variants is keyed by target MediaWiki version string (e.g. "1.29").
var Variants = map[string]Variant{
	"1.5": {
		MWVersion:   "1.5",
		PageColumns: basePageColumns,
		RevisionColumns: []Column{
			{Name: "rev_id"}, {Name: "rev_page"}, {Name: "rev_text_id"}, {Name: "rev_comment"},
			{Name: "rev_user"}, {Name: "rev_user_text"}, {Name: "rev_timestamp"},
			{Name: "rev_minor_edit"}, {Name: "rev_deleted"}, {Name: "rev_len"}, {Name: "rev_parent_id"},
		},
		TextColumns: baseTextColumns,
	},
	"1.21": {
		MWVersion:   "1.21",
		PageColumns: basePageColumns,
		RevisionColumns: []Column{
			{Name: "rev_id"}, {Name: "rev_page"}, {Name: "rev_text_id"}, {Name: "rev_comment"},
			{Name: "rev_user"}, {Name: "rev_user_text"}, {Name: "rev_timestamp"},
			{Name: "rev_minor_edit"}, {Name: "rev_deleted"}, {Name: "rev_len"}, {Name: "rev_parent_id"},
			{Name: "rev_sha1"},
		},
		TextColumns: baseTextColumns,
	},
	"1.29": {
		MWVersion:   "1.29",
		PageColumns: basePageColumns,
		RevisionColumns: []Column{
			{Name: "rev_id"}, {Name: "rev_page"}, {Name: "rev_text_id"}, {Name: "rev_comment"},
			{Name: "rev_user"}, {Name: "rev_user_text"}, {Name: "rev_timestamp"},
			{Name: "rev_minor_edit"}, {Name: "rev_deleted"}, {Name: "rev_len"}, {Name: "rev_parent_id"},
			{Name: "rev_sha1"}, {Name: "rev_content_model"}, {Name: "rev_content_format"},
		},
		TextColumns: baseTextColumns,
	},
}

// basePageColumns is shared by every variant: the page table's layout
// hasn't changed across the MW versions this transducer targets.
// page_is_new, page_random and page_touched have no source in the data
// model (they're computed by MediaWiki itself at import time), so they
// carry a Default instead of being read off mwdump.Page.
var basePageColumns = []Column{
	{Name: "page_id"}, {Name: "page_namespace"}, {Name: "page_title"}, {Name: "page_restrictions"},
	{Name: "page_is_redirect"},
	{Name: "page_is_new", Default: sqlwire.Bool(false)},
	{Name: "page_random", Default: sqlwire.Int(0)},
	{Name: "page_touched", Default: sqlwire.Str("")},
	{Name: "page_latest"}, {Name: "page_len"},
}

var baseTextColumns = []Column{
	{Name: "old_id"}, {Name: "old_text"}, {Name: "old_flags"},
}

// Lookup returns the Variant for mwVersion, or an error if unsupported.
func Lookup(mwVersion string) (Variant, error) {
	if v, ok := Variants[mwVersion]; ok {
		return v, nil
	}
	return Variant{}, fmt.Errorf("schema: unsupported target MediaWiki version %q", mwVersion)
}

// SupportsContentModel reports whether a variant's revision table has
// rev_content_model/rev_content_format columns. Of the variants in the
// table only 1.29 has them; 1.5 and 1.21 do not.
func (v Variant) SupportsContentModel() bool {
	for _, c := range v.RevisionColumns {
		if c.Name == "rev_content_model" {
			return true
		}
	}
	return false
}

// SupportsSHA1 reports whether a variant's revision table has rev_sha1.
func (v Variant) SupportsSHA1() bool {
	for _, c := range v.RevisionColumns {
		if c.Name == "rev_sha1" {
			return true
		}
	}
	return false
}

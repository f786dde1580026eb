package join

import (
	"github.com/wikidump/xml2sql/mwdump"
	"github.com/wikidump/xml2sql/schema"
	"github.com/wikidump/xml2sql/sqlwire"
)

// pageColumnValue returns the Value for one page column: the real field
// when the data model has one, otherwise the variant's own default for
// that column (spec §4.9, C9) rather than a value hardcoded here.
func pageColumnValue(c schema.Column, p *mwdump.Page) sqlwire.Value {
	switch c.Name {
	case "page_id":
		return sqlwire.Int(int64(p.PageID))
	case "page_namespace":
		return sqlwire.Int(int64(p.Namespace))
	case "page_title":
		return sqlwire.Str(p.Title)
	case "page_restrictions":
		return sqlwire.Str(p.Restrictions)
	case "page_is_redirect":
		return sqlwire.Bool(p.IsRedirect)
	case "page_latest":
		return sqlwire.Int(int64(p.LatestRevID))
	case "page_len":
		return sqlwire.Int(int64(p.Len))
	default:
		return c.Default
	}
}

// revisionColumnValue returns the Value for one named revision column.
func revisionColumnValue(c schema.Column, r *mwdump.Revision) sqlwire.Value {
	switch c.Name {
	case "rev_id":
		return sqlwire.Int(int64(r.RevID))
	case "rev_page":
		return sqlwire.Int(int64(r.PageID))
	case "rev_text_id":
		return sqlwire.Int(int64(r.TextID))
	case "rev_comment":
		return sqlwire.Str(r.Comment)
	case "rev_user":
		return sqlwire.Int(int64(r.UserID))
	case "rev_user_text":
		return sqlwire.Str(r.UserText)
	case "rev_timestamp":
		return sqlwire.Str(r.Timestamp)
	case "rev_minor_edit":
		return sqlwire.Bool(r.Minor)
	case "rev_deleted":
		return sqlwire.Int(int64(r.DeletedFlags))
	case "rev_len":
		return sqlwire.Int(int64(r.Len))
	case "rev_parent_id":
		return sqlwire.Int(int64(r.ParentID))
	case "rev_sha1":
		return sqlwire.Str(r.SHA1Base36)
	case "rev_content_model":
		return sqlwire.Str(r.Model)
	case "rev_content_format":
		return sqlwire.Str(r.Format)
	default:
		return c.Default
	}
}

func textColumnValue(c schema.Column, t *mwdump.Text) sqlwire.Value {
	switch c.Name {
	case "old_id":
		return sqlwire.Int(int64(t.TextID))
	case "old_text":
		return sqlwire.String(t.Content)
	case "old_flags":
		return sqlwire.Str(t.Flags)
	default:
		return c.Default
	}
}

func pageRow(v schema.Variant, p *mwdump.Page) []sqlwire.Value {
	row := make([]sqlwire.Value, len(v.PageColumns))
	for i, c := range v.PageColumns {
		row[i] = pageColumnValue(c, p)
	}
	return row
}

func revisionRow(v schema.Variant, r *mwdump.Revision) []sqlwire.Value {
	row := make([]sqlwire.Value, len(v.RevisionColumns))
	for i, c := range v.RevisionColumns {
		row[i] = revisionColumnValue(c, r)
	}
	return row
}

func textRow(v schema.Variant, t *mwdump.Text) []sqlwire.Value {
	row := make([]sqlwire.Value, len(v.TextColumns))
	for i, c := range v.TextColumns {
		row[i] = textColumnValue(c, t)
	}
	return row
}

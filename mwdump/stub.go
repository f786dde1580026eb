package mwdump

import (
	"io"

	"github.com/wikidump/xml2sql/xmlstream"
)

// SchemaVersion is the declared export schema, e.g. "0.10", read off the
// root <mediawiki version="..."> attribute.
type SchemaVersion string

// StubReader pulls whole pages (with all their revision metadata, but no
// text) out of a MediaWiki stub export. Per spec §5, the working set is
// bounded to one page's worth of revision metadata at a time; a page's
// revisions are read eagerly because a stub dump carries only metadata,
// never the multi-gigabyte text bodies that would make that unsafe.
type StubReader struct {
	scan    *xmlstream.TagScanner
	Version SchemaVersion
}

// NewStubReader wraps r (typically an *xmlstream.LineBuffer over C1) in a
// StubReader, consuming the outer <mediawiki> start tag to capture the
// declared schema version.
func NewStubReader(r io.Reader) (*StubReader, error) {
	sr := &StubReader{scan: xmlstream.NewTagScanner(r)}
	for {
		ev, err := sr.scan.Next()
		if err != nil {
			return nil, err
		}
		if ev.Kind == xmlstream.StartTag && ev.Name == "mediawiki" {
			if v, ok := ev.Attr("version"); ok {
				sr.Version = SchemaVersion(v)
			}
			return sr, nil
		}
	}
}

// NextPage returns the next page's metadata together with every revision
// the stub carries for it, or io.EOF when the dump is exhausted.
func (sr *StubReader) NextPage() (*Page, []*Revision, error) {
	for {
		ev, err := sr.scan.Next()
		if err != nil {
			return nil, nil, err
		}
		switch {
		case ev.Kind == xmlstream.StartTag && ev.Name == "page":
			return sr.parsePage()
		case ev.Kind == xmlstream.EndTag && ev.Name == "mediawiki":
			return nil, nil, io.EOF
		}
	}
}

func (sr *StubReader) parsePage() (*Page, []*Revision, error) {
	page := &Page{}
	var revs []*Revision

	for {
		ev, err := sr.scan.Next()
		if err != nil {
			return nil, nil, err
		}
		switch {
		case ev.Kind == xmlstream.StartTag && ev.Name == "title":
			text, err := readText(sr.scan)
			if err != nil {
				return nil, nil, err
			}
			page.Title = text
		case ev.Kind == xmlstream.StartTag && ev.Name == "ns":
			text, err := readText(sr.scan)
			if err != nil {
				return nil, nil, err
			}
			page.Namespace = int16(parseIntDefault(text, 0))
		case ev.Kind == xmlstream.StartTag && ev.Name == "id":
			text, err := readText(sr.scan)
			if err != nil {
				return nil, nil, err
			}
			page.PageID = uint32(parseIntDefault(text, 0))
		case ev.Kind == xmlstream.StartTag && ev.Name == "redirect":
			page.IsRedirect = true
			if err := skipElement(sr.scan); err != nil {
				return nil, nil, err
			}
		case ev.Kind == xmlstream.StartTag && ev.Name == "restrictions":
			text, err := readText(sr.scan)
			if err != nil {
				return nil, nil, err
			}
			page.Restrictions = text
		case ev.Kind == xmlstream.StartTag && ev.Name == "revision":
			rev, err := sr.parseStubRevision(page.PageID)
			if err != nil {
				return nil, nil, err
			}
			revs = append(revs, rev)
			page.LatestRevID = rev.RevID
			page.Len = rev.Len
		case ev.Kind == xmlstream.EndTag && ev.Name == "page":
			return page, revs, nil
		}
	}
}

func (sr *StubReader) parseStubRevision(pageID uint32) (*Revision, error) {
	rev := &Revision{PageID: pageID, Model: "wikitext", Format: "text/x-wiki"}
	var haveUserID bool

	for {
		ev, err := sr.scan.Next()
		if err != nil {
			return nil, err
		}
		switch {
		case ev.Kind == xmlstream.StartTag && ev.Name == "id":
			text, err := readText(sr.scan)
			if err != nil {
				return nil, err
			}
			rev.RevID = uint32(parseIntDefault(text, 0))
		case ev.Kind == xmlstream.StartTag && ev.Name == "parentid":
			text, err := readText(sr.scan)
			if err != nil {
				return nil, err
			}
			rev.ParentID = uint32(parseIntDefault(text, 0))
		case ev.Kind == xmlstream.StartTag && ev.Name == "timestamp":
			text, err := readText(sr.scan)
			if err != nil {
				return nil, err
			}
			ts, err := ParseTimestamp(text)
			if err == nil {
				rev.Timestamp = ts
			}
		case ev.Kind == xmlstream.StartTag && ev.Name == "contributor":
			uid, utext, err := parseContributor(sr.scan)
			if err != nil {
				return nil, err
			}
			rev.UserID, rev.UserText = uid, utext
			haveUserID = true
		case ev.Kind == xmlstream.StartTag && ev.Name == "minor":
			rev.Minor = true
			if err := skipElement(sr.scan); err != nil {
				return nil, err
			}
		case ev.Kind == xmlstream.StartTag && ev.Name == "comment":
			if deleted, _ := ev.Attr("deleted"); deleted == "deleted" {
				rev.DeletedFlags |= DeletedText << 1 // comment redaction, distinct bit from text
				if err := skipElement(sr.scan); err != nil {
					return nil, err
				}
				continue
			}
			text, err := readText(sr.scan)
			if err != nil {
				return nil, err
			}
			rev.Comment = text
		case ev.Kind == xmlstream.StartTag && ev.Name == "model":
			text, err := readText(sr.scan)
			if err != nil {
				return nil, err
			}
			rev.Model = text
		case ev.Kind == xmlstream.StartTag && ev.Name == "format":
			text, err := readText(sr.scan)
			if err != nil {
				return nil, err
			}
			rev.Format = text
		case ev.Kind == xmlstream.StartTag && ev.Name == "sha1":
			text, err := readText(sr.scan)
			if err != nil {
				return nil, err
			}
			if ValidateSHA1Base36(text) {
				rev.SHA1Base36 = text
			}
		case ev.Kind == xmlstream.StartTag && ev.Name == "text":
			// Stub dumps omit content but carry the byte-length attribute.
			if n, ok := ev.Attr("bytes"); ok {
				rev.Len = uint32(parseIntDefault(n, 0))
			}
			if id, ok := ev.Attr("id"); ok {
				rev.TextID = uint32(parseIntDefault(id, 0))
			}
			if deleted, _ := ev.Attr("deleted"); deleted == "deleted" {
				rev.DeletedFlags |= DeletedText
			}
			if err := skipElement(sr.scan); err != nil {
				return nil, err
			}
		case ev.Kind == xmlstream.EndTag && ev.Name == "revision":
			if !haveUserID {
				rev.UserID, rev.UserText = 0, ""
			}
			return rev, nil
		}
	}
}

// parseContributor reads <contributor>, which holds either
// <id>+<username> or a bare <ip>, per spec §4.4.
func parseContributor(s *xmlstream.TagScanner) (userID uint32, userText string, err error) {
	for {
		ev, err := s.Next()
		if err != nil {
			return 0, "", err
		}
		switch {
		case ev.Kind == xmlstream.StartTag && ev.Name == "id":
			text, err := readText(s)
			if err != nil {
				return 0, "", err
			}
			userID = uint32(parseIntDefault(text, 0))
		case ev.Kind == xmlstream.StartTag && ev.Name == "username":
			text, err := readText(s)
			if err != nil {
				return 0, "", err
			}
			userText = text
		case ev.Kind == xmlstream.StartTag && ev.Name == "ip":
			text, err := readText(s)
			if err != nil {
				return 0, "", err
			}
			userID, userText = 0, text
		case ev.Kind == xmlstream.EndTag && ev.Name == "contributor":
			return userID, userText, nil
		}
	}
}

// readText consumes a simple <foo>text</foo> element whose start tag has
// already been read, concatenating any Text events until the matching end
// tag, per the teacher's getText helper (wikidump/pages.go).
func readText(s *xmlstream.TagScanner) (string, error) {
	var buf []byte
	depth := 0
	for {
		ev, err := s.Next()
		if err != nil {
			return "", err
		}
		switch ev.Kind {
		case xmlstream.Text:
			buf = append(buf, ev.Bytes...)
		case xmlstream.StartTag:
			if ev.Name == "deleted" {
				// <text><deleted/></text>: no content, caller checks attrs.
				if _, err := s.Next(); err != nil { // consume the EndTag
					return "", err
				}
				continue
			}
			depth++
		case xmlstream.EndTag:
			if depth == 0 {
				return string(buf), nil
			}
			depth--
		}
	}
}

// skipElement discards everything up to and including the matching end
// tag of an element whose start tag has already been read.
func skipElement(s *xmlstream.TagScanner) error {
	depth := 0
	for {
		ev, err := s.Next()
		if err != nil {
			return err
		}
		switch ev.Kind {
		case xmlstream.StartTag:
			depth++
		case xmlstream.EndTag:
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}

func parseIntDefault(s string, def int64) int64 {
	var n int64
	var any bool
	for _, c := range s {
		if c < '0' || c > '9' {
			if any {
				break
			}
			return def
		}
		n = n*10 + int64(c-'0')
		any = true
	}
	if !any {
		return def
	}
	return n
}

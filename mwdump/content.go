package mwdump

import (
	"io"

	"github.com/wikidump/xml2sql/xmlstream"
)

// ContentRevision is one <revision> pulled from the content dump: just
// enough to join against the stub stream by RevID and hand the driver a
// Text payload (spec §4.8).
type ContentRevision struct {
	PageID  uint32
	RevID   uint32
	Text    Text
	SHA1    string // "" if the content dump doesn't carry <sha1>
	Deleted bool
}

// ContentReader pulls one revision at a time out of a MediaWiki content
// export, never holding more than the current revision's text in memory.
type ContentReader struct {
	scan    *xmlstream.TagScanner
	pageID  uint32
	Version SchemaVersion
}

// NewContentReader wraps r, consuming the outer <mediawiki> start tag.
func NewContentReader(r io.Reader) (*ContentReader, error) {
	cr := &ContentReader{scan: xmlstream.NewTagScanner(r)}
	for {
		ev, err := cr.scan.Next()
		if err != nil {
			return nil, err
		}
		if ev.Kind == xmlstream.StartTag && ev.Name == "mediawiki" {
			if v, ok := ev.Attr("version"); ok {
				cr.Version = SchemaVersion(v)
			}
			return cr, nil
		}
	}
}

// Next returns the next revision's text, or io.EOF at the end of the dump.
func (cr *ContentReader) Next() (*ContentRevision, error) {
	for {
		ev, err := cr.scan.Next()
		if err != nil {
			return nil, err
		}
		switch {
		case ev.Kind == xmlstream.StartTag && ev.Name == "page":
			if err := cr.enterPage(); err != nil && err != errNoRevisionInPage {
				return nil, err
			}
		case ev.Kind == xmlstream.StartTag && ev.Name == "revision":
			rev, err := cr.parseRevision()
			if err != nil {
				return nil, err
			}
			if rev != nil {
				return rev, nil
			}
		case ev.Kind == xmlstream.EndTag && ev.Name == "mediawiki":
			return nil, io.EOF
		}
	}
}

var errNoRevisionInPage = io.ErrUnexpectedEOF

// enterPage reads just the page id, leaving the scanner positioned so the
// caller's main loop picks up the following <revision> elements itself.
func (cr *ContentReader) enterPage() error {
	for {
		ev, err := cr.scan.Next()
		if err != nil {
			return err
		}
		switch {
		case ev.Kind == xmlstream.StartTag && ev.Name == "id":
			text, err := readText(cr.scan)
			if err != nil {
				return err
			}
			cr.pageID = uint32(parseIntDefault(text, 0))
			return nil
		case ev.Kind == xmlstream.StartTag && ev.Name == "revision":
			// A page with no <id> before its first revision: shouldn't
			// happen in real dumps, but don't wedge on it.
			return errNoRevisionInPage
		case ev.Kind == xmlstream.EndTag && ev.Name == "page":
			return nil
		}
	}
}

func (cr *ContentReader) parseRevision() (*ContentRevision, error) {
	rev := &ContentRevision{PageID: cr.pageID}
	for {
		ev, err := cr.scan.Next()
		if err != nil {
			return nil, err
		}
		switch {
		case ev.Kind == xmlstream.StartTag && ev.Name == "id":
			text, err := readText(cr.scan)
			if err != nil {
				return nil, err
			}
			rev.RevID = uint32(parseIntDefault(text, 0))
		case ev.Kind == xmlstream.StartTag && ev.Name == "sha1":
			text, err := readText(cr.scan)
			if err != nil {
				return nil, err
			}
			if ValidateSHA1Base36(text) {
				rev.SHA1 = text
			}
		case ev.Kind == xmlstream.StartTag && ev.Name == "text":
			id, _ := ev.Attr("id")
			deletedAttr, _ := ev.Attr("deleted")
			text, deletedMarker, err := readTextOrDeleted(cr.scan)
			if err != nil {
				return nil, err
			}
			rev.Deleted = deletedAttr == "deleted" || deletedMarker
			rev.Text = Text{
				TextID:  uint32(parseIntDefault(id, 0)),
				Content: []byte(text),
				Flags:   "utf-8",
			}
		case ev.Kind == xmlstream.EndTag && ev.Name == "revision":
			return rev, nil
		}
	}
}

// readTextOrDeleted is readText specialized for <text>, additionally
// reporting whether a <deleted/> marker appears directly inside the
// element (spec §4.4, "Deleted content").
func readTextOrDeleted(s *xmlstream.TagScanner) (text string, deleted bool, err error) {
	var buf []byte
	depth := 0
	for {
		ev, err := s.Next()
		if err != nil {
			return "", false, err
		}
		switch ev.Kind {
		case xmlstream.Text:
			buf = append(buf, ev.Bytes...)
		case xmlstream.StartTag:
			if ev.Name == "deleted" && depth == 0 {
				deleted = true
			}
			depth++
		case xmlstream.EndTag:
			if depth == 0 {
				return string(buf), deleted, nil
			}
			depth--
		}
	}
}

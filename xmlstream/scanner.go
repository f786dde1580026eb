package xmlstream

import (
	"encoding/xml"
	"fmt"
	"io"
)

// EventKind distinguishes the three token kinds a TagScanner emits.
type EventKind int

const (
	StartTag EventKind = iota
	Text
	EndTag
)

// Attr is one attribute of a StartTag event, kept in document order (the
// "ordered map" of spec §4.3).
type Attr struct {
	Name  string
	Value string
}

// Event is a single tag-scanner token: a StartTag (with its attributes), a
// Text run (already entity-decoded), or an EndTag.
type Event struct {
	Kind  EventKind
	Name  string
	Attrs []Attr
	Bytes []byte
}

// Attr looks up an attribute by name on a StartTag event.
func (e Event) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// XMLError reports a framing failure at a given byte offset, mirroring
// the teacher's use of encoding/xml as the pull-parsing substrate: the
// scanner is a thin event-shaping layer over xml.Decoder, not a DOM.
type XMLError struct {
	Offset int64
	Reason string
}

func (e *XMLError) Error() string {
	return fmt.Sprintf("xmlstream: offset %d: %s", e.Offset, e.Reason)
}

// TagScanner is a lightweight, non-validating pull scanner over a
// LineBuffer. It never builds a DOM: callers pull one Event at a time.
type TagScanner struct {
	dec  *xml.Decoder
	err  error
	open []string // names of elements started but not yet ended
}

// NewTagScanner creates a scanner over r. r is typically a *LineBuffer, so
// that C1/C2's buffering and codec handling apply transparently.
func NewTagScanner(r io.Reader) *TagScanner {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	return &TagScanner{dec: dec}
}

// Next returns the next event, or io.EOF when the stream is exhausted. A
// non-nil, non-EOF error is always an *XMLError.
func (s *TagScanner) Next() (Event, error) {
	if s.err != nil {
		return Event{}, s.err
	}

	for {
		tok, err := s.dec.RawToken()
		if err == io.EOF && len(s.open) > 0 {
			err = fmt.Errorf("unexpected EOF inside <%s>", s.open[len(s.open)-1])
		}
		if err != nil {
			if err != io.EOF {
				err = &XMLError{Offset: s.dec.InputOffset(), Reason: err.Error()}
			}
			s.err = err
			return Event{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			attrs := make([]Attr, len(t.Attr))
			for i, a := range t.Attr {
				attrs[i] = Attr{Name: a.Name.Local, Value: a.Value}
			}
			s.open = append(s.open, t.Name.Local)
			return Event{Kind: StartTag, Name: t.Name.Local, Attrs: attrs}, nil
		case xml.EndElement:
			if n := len(s.open); n == 0 || s.open[n-1] != t.Name.Local {
				s.err = &XMLError{Offset: s.dec.InputOffset(), Reason: "unexpected end element </" + t.Name.Local + ">"}
				return Event{}, s.err
			}
			s.open = s.open[:len(s.open)-1]
			return Event{Kind: EndTag, Name: t.Name.Local}, nil
		case xml.CharData:
			if len(t) == 0 {
				continue
			}
			// xml.CharData's backing array is reused by the decoder; copy it.
			b := make([]byte, len(t))
			copy(b, t)
			return Event{Kind: Text, Bytes: b}, nil
		default:
			// Comments, directives and processing instructions are skipped,
			// per spec §4.3.
			continue
		}
	}
}

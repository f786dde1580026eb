// Package mwdump assembles typed page/revision/text records out of the
// raw xmlstream.Event stream coming from a MediaWiki XML export, per the
// data model of §3: a Page per <page>, a Revision per <revision>, and a
// Text per <text>.
package mwdump

// Deleted-content bit, set on Revision.DeletedFlags when the dump redacts
// the revision text (spec §4.4, "Deleted content").
const DeletedText uint8 = 1 << 0

// Page is one <page> element's metadata. Invariant: PageID > 0.
type Page struct {
	PageID       uint32
	Namespace    int16
	Title        string
	Restrictions string
	IsRedirect   bool
	LatestRevID  uint32
	Len          uint32
}

// Revision is one <revision> element, joined with its Text by TextID.
type Revision struct {
	RevID         uint32
	PageID        uint32
	TextID        uint32
	Comment       string
	UserID        uint32
	UserText      string
	Timestamp     string // YYYYMMDDHHMMSS, per spec §4.4
	Minor         bool
	DeletedFlags  uint8
	Len           uint32
	ParentID      uint32
	SHA1Base36    string // 31 chars, empty if not yet derived
	Model         string
	Format        string
}

// Text is one <text> element's payload, keyed by TextID.
type Text struct {
	TextID  uint32
	Content []byte
	Flags   string
}

package join

import (
	"io"

	"github.com/wikidump/xml2sql/mwdump"
)

// contentCursor provides one-element lookahead over a ContentReader and
// deduplicates text ids, keeping the first occurrence of a given source
// <text id> and discarding later ones (spec §3, §9: "the original code
// tolerates them ... behavior is keep first").
type contentCursor struct {
	cr      *mwdump.ContentReader
	pending *mwdump.ContentRevision
	eof     bool
	seen    map[uint32]bool
	stats   *RunStats
}

func newContentCursor(cr *mwdump.ContentReader, stats *RunStats) *contentCursor {
	return &contentCursor{cr: cr, seen: make(map[uint32]bool), stats: stats}
}

// peek returns the next not-yet-consumed content revision without
// advancing, or (nil, nil) at EOF.
func (c *contentCursor) peek() (*mwdump.ContentRevision, error) {
	for c.pending == nil && !c.eof {
		rev, err := c.cr.Next()
		if err == io.EOF {
			c.eof = true
			break
		}
		if err != nil {
			return nil, err
		}
		if rev.Text.TextID != 0 && c.seen[rev.Text.TextID] {
			c.stats.SkippedDuplicateText++
			continue
		}
		if rev.Text.TextID != 0 {
			c.seen[rev.Text.TextID] = true
		}
		c.pending = rev
	}
	return c.pending, nil
}

// advance discards the current lookahead value so the next peek pulls a
// fresh one.
func (c *contentCursor) advance() {
	c.pending = nil
}

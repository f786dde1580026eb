package join

import (
	"io"

	"github.com/wikidump/xml2sql/mwdump"
	"github.com/wikidump/xml2sql/schema"
	"github.com/wikidump/xml2sql/sqlwire"
)

// Sinks is the set of per-table batchers the driver flushes rows into
// (C6). Each target table is a separate output stream (spec §5: "because
// each target table is a separate file, cross-file ordering is
// irrelevant").
type Sinks struct {
	Page     *sqlwire.Batcher
	Revision *sqlwire.Batcher
	Text     *sqlwire.Batcher
}

// Flush flushes every sink's trailing statement.
func (s *Sinks) Flush() error {
	if err := s.Page.Flush(); err != nil {
		return err
	}
	if err := s.Revision.Flush(); err != nil {
		return err
	}
	return s.Text.Flush()
}

// Run drives stub and content in lockstep per spec §4.8, emitting page,
// revision and text rows through sinks until the stub stream is
// exhausted. It returns *DesyncError if the content stream falls more
// than ctx.DesyncTolerance revisions behind or runs more than that far
// ahead, or any I/O/XML error
// encountered along the way.
func Run(ctx *Context, variant schema.Variant, stub *mwdump.StubReader, content *mwdump.ContentReader, sinks *Sinks) error {
	cursor := newContentCursor(content, &ctx.Stats)
	nextTextID := ctx.StartID
	if nextTextID == 0 {
		nextTextID = 1
	}

	for {
		page, revs, err := stub.NextPage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		ctx.Stats.Pages++
		ctx.reportPageProgress(ctx.Stats.Pages)

		for _, rev := range revs {
			ctx.Stats.Revisions++

			matched, err := advanceToMatch(ctx, cursor, rev)
			if err != nil {
				return err
			}

			var text mwdump.Text
			if matched != nil {
				text = matched.Text
				if matched.SHA1 != "" {
					rev.SHA1Base36 = matched.SHA1
				}
				if matched.Deleted {
					rev.DeletedFlags |= mwdump.DeletedText
				}
				cursor.advance()
			} else {
				ctx.Stats.MissingContentRevisions++
				ctx.logOnce(page.PageID, "revision %d has no content counterpart (page %q)", rev.RevID, page.Title)
			}

			if rev.SHA1Base36 == "" {
				rev.SHA1Base36 = mwdump.DeriveSHA1Base36(text.Content)
			}

			text.TextID = nextTextID
			rev.TextID = nextTextID
			nextTextID++

			if err := sinks.Text.Add(textRow(variant, &text)); err != nil {
				return err
			}
			if err := sinks.Revision.Add(revisionRow(variant, rev)); err != nil {
				return err
			}
			ctx.Stats.TextRows++
		}

		if err := sinks.Page.Add(pageRow(variant, page)); err != nil {
			return err
		}
	}

	discardRemainder(cursor, &ctx.Stats)
	return sinks.Flush()
}

// advanceToMatch advances the content cursor past any orphan (surplus)
// revisions until it either matches rev.RevID or overtakes it, per the
// three cases of spec §4.8 step 4.
func advanceToMatch(ctx *Context, cursor *contentCursor, rev *mwdump.Revision) (*mwdump.ContentRevision, error) {
	for {
		peeked, err := cursor.peek()
		if err != nil {
			return nil, err
		}
		if peeked == nil {
			return nil, nil // content exhausted: stub revision has no counterpart
		}

		switch {
		case peeked.RevID == rev.RevID:
			return peeked, nil
		case peeked.RevID < rev.RevID:
			// Orphan: content has surplus, skip and advance.
			ctx.Stats.SkippedOrphanRevisions++
			if delta := int(rev.RevID) - int(peeked.RevID); delta > ctx.DesyncTolerance {
				return nil, &DesyncError{StubRevID: rev.RevID, ContentRevID: peeked.RevID, Tolerance: ctx.DesyncTolerance}
			}
			cursor.advance()
		default: // peeked.RevID > rev.RevID
			// Stub's revision has no content counterpart yet; don't advance
			// content, since it may match a later stub revision. But if
			// content has already run this far ahead, that's the same
			// desync failure as the content-behind case, just mirrored.
			if delta := int(peeked.RevID) - int(rev.RevID); delta > ctx.DesyncTolerance {
				return nil, &DesyncError{StubRevID: rev.RevID, ContentRevID: peeked.RevID, Tolerance: ctx.DesyncTolerance}
			}
			return nil, nil
		}
	}
}

// discardRemainder accounts for any content-stream revisions left after
// the stub stream hit EOF (spec §4.8, "End condition").
func discardRemainder(cursor *contentCursor, stats *RunStats) {
	for {
		peeked, err := cursor.peek()
		if err != nil || peeked == nil {
			return
		}
		stats.SkippedOrphanRevisions++
		cursor.advance()
	}
}

// Package join implements C8, the dual-stream join driver that advances
// the stub and content streams in lockstep, and C11, the run context
// those streams' counters are threaded through.
package join

import (
	"fmt"
	"log"

	"github.com/wikidump/xml2sql/xmlstream"
)

// RunStats holds the recoverable-error counters spec §7 requires to be
// "threaded through the driver" rather than kept as global state.
type RunStats struct {
	Pages, Revisions, TextRows int

	SkippedDuplicateText   int
	SkippedOrphanRevisions int // content revisions with no matching stub entry
	MissingContentRevisions int // stub revisions with no matching content entry
	MalformedRecords       map[string]int
}

// Summary formats the end-of-run counter line spec §7 requires ("summary
// counts printed at end").
func (s *RunStats) Summary() string {
	return fmt.Sprintf(
		"pages=%d revisions=%d text=%d dup_text=%d orphan_content=%d missing_content=%d malformed=%v",
		s.Pages, s.Revisions, s.TextRows, s.SkippedDuplicateText,
		s.SkippedOrphanRevisions, s.MissingContentRevisions, s.MalformedRecords)
}

func (s *RunStats) recordMalformed(category string) {
	if s.MalformedRecords == nil {
		s.MalformedRecords = make(map[string]int)
	}
	s.MalformedRecords[category]++
}

// Context configures and accumulates state for one Run, per the "no
// global state... counters live on a context struct" design note in
// spec §9.
type Context struct {
	StartID         uint32 // first text_id to assign (spec §6, --startid)
	DesyncTolerance int    // spec §4.8, default 1000
	Verbose         bool

	Stats RunStats

	loggedMissingContent map[uint32]bool // per-page "logged once" tracking
	pageProgress         func(int)       // periodic page counter, spec §6
}

// DefaultDesyncTolerance is K from spec §4.8.
const DefaultDesyncTolerance = 1000

// pageProgressInterval is how often, in pages, the verbose counter line is
// printed (spec §6: "one counter line per 10000 pages").
const pageProgressInterval = 10000

// NewContext returns a Context with spec-mandated defaults.
func NewContext() *Context {
	return &Context{
		StartID:         1,
		DesyncTolerance: DefaultDesyncTolerance,
		pageProgress:    xmlstream.LogEvery("pages processed", pageProgressInterval),
	}
}

// reportPageProgress logs a periodic page counter when running verbosely.
func (c *Context) reportPageProgress(pages int) {
	if !c.Verbose {
		return
	}
	c.pageProgress(pages)
}

func (c *Context) logOnce(pageID uint32, format string, args ...interface{}) {
	if !c.Verbose {
		return
	}
	if c.loggedMissingContent == nil {
		c.loggedMissingContent = make(map[uint32]bool)
	}
	if c.loggedMissingContent[pageID] {
		return
	}
	c.loggedMissingContent[pageID] = true
	log.Printf(format, args...)
}

// DesyncError is returned when the content stream lags or leads the stub
// stream by more than Context.DesyncTolerance revisions (spec §4.8, §7).
type DesyncError struct {
	StubRevID    uint32
	ContentRevID uint32
	Tolerance    int
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("join: desync beyond tolerance %d: stub at rev %d, content at rev %d",
		e.Tolerance, e.StubRevID, e.ContentRevID)
}

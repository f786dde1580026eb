package sqlwire

import (
	"bytes"
	"io"
)

// DefaultSoftCap is the default per-statement size bound from spec §4.6.
const DefaultSoftCap = 1 << 20 // 1 MiB

// Batcher accumulates formatted row tuples for one target table and
// emits them as multi-row INSERT statements once the accumulated
// statement would exceed the soft cap, or on Flush. On a write error Flush
// returns it at once and makes no attempt to recover a statement that was
// partly written (spec §4.6: "no partial-statement recovery").
type Batcher struct {
	w       io.Writer
	table   string
	softCap int

	buf       bytes.Buffer
	rows      int
	wroteStmt bool // whether any statement has been written at all
}

// NewBatcher creates a batcher writing `INSERT INTO \`table\` ...`
// statements to w, capped at softCap bytes of encoded row data per
// statement. softCap <= 0 selects DefaultSoftCap.
func NewBatcher(w io.Writer, table string, softCap int) *Batcher {
	if softCap <= 0 {
		softCap = DefaultSoftCap
	}
	return &Batcher{w: w, table: table, softCap: softCap}
}

// Add appends one row's values to the current statement, flushing first
// if the row would push the statement over the soft cap.
func (b *Batcher) Add(values []Value) error {
	tuple := FormatTuple(values)
	if b.rows > 0 && b.buf.Len()+len(tuple)+1 > b.softCap {
		if err := b.Flush(); err != nil {
			return err
		}
	}
	if b.rows > 0 {
		b.buf.WriteByte(',')
	}
	b.buf.Write(tuple)
	b.rows++
	return nil
}

// Flush writes the accumulated statement, if any, and resets the
// batcher for the next one. Called automatically by Add at the soft cap
// and must be called once more at stream end to flush the tail.
func (b *Batcher) Flush() error {
	if b.rows == 0 {
		return nil
	}
	if b.wroteStmt {
		if _, err := io.WriteString(b.w, "\n"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(b.w, "INSERT INTO `"+b.table+"` VALUES "); err != nil {
		return err
	}
	if _, err := b.w.Write(b.buf.Bytes()); err != nil {
		return err
	}
	if _, err := io.WriteString(b.w, ";\n"); err != nil {
		return err
	}
	b.buf.Reset()
	b.rows = 0
	b.wroteStmt = true
	return nil
}

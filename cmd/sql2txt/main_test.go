package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/wikidump/xml2sql/sqlwire"
)

func TestWriteTabSeparated(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	tuple := []sqlwire.Value{sqlwire.Int(1), sqlwire.Str("Main Page"), sqlwire.Null}
	if err := writeTabSeparated(w, tuple); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	if got, want := buf.String(), "1\tMain Page\t\\N\n"; got != want {
		t.Errorf("writeTabSeparated = %q, want %q", got, want)
	}
}

// TestBatchToTabSeparatedRoundTrip exercises the full batch -> TupleReader
// -> writeTabSeparated path: what a Batcher writes, sql2txt must read back
// and flatten to one tab-separated line per tuple.
func TestBatchToTabSeparatedRoundTrip(t *testing.T) {
	var sql bytes.Buffer
	batcher := sqlwire.NewBatcher(&sql, "page", 0)
	rows := [][]sqlwire.Value{
		{sqlwire.Int(1), sqlwire.Str("Main Page"), sqlwire.Null},
		{sqlwire.Int(2), sqlwire.Str("It's \"quoted\""), sqlwire.Int(0)},
	}
	for _, r := range rows {
		if err := batcher.Add(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := batcher.Flush(); err != nil {
		t.Fatal(err)
	}

	tr := sqlwire.NewTupleReader(strings.NewReader(sql.String()))
	var out bytes.Buffer
	bw := bufio.NewWriter(&out)
	for {
		tuple, err := tr.Next()
		if err != nil {
			break
		}
		if err := writeTabSeparated(bw, tuple); err != nil {
			t.Fatal(err)
		}
	}
	bw.Flush()

	want := "1\tMain Page\t\\N\n2\tIt's \"quoted\"\t0\n"
	if got := out.String(); got != want {
		t.Errorf("round trip = %q, want %q", got, want)
	}
}

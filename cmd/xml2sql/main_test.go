package main

import (
	"errors"
	"testing"

	"github.com/wikidump/xml2sql/join"
	"github.com/wikidump/xml2sql/mwdump"
	"github.com/wikidump/xml2sql/schema"
	"github.com/wikidump/xml2sql/xmlstream"
)

func TestMapParseError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"desync", &join.DesyncError{StubRevID: 10, ContentRevID: 1, Tolerance: 5}, exitDesync},
		{"xml", &xmlstream.XMLError{Offset: 1, Reason: "bad"}, exitXML},
		{"io", &xmlstream.IOError{Path: "x", Err: errors.New("boom")}, exitIOOrCodec},
		{"codec", &xmlstream.CodecError{Path: "x", Err: errors.New("boom")}, exitIOOrCodec},
		{"other", errors.New("unrecognized"), exitIOOrCodec},
	}
	for _, c := range cases {
		if got := mapParseError(c.err); got != c.want {
			t.Errorf("%s: mapParseError = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestSchemaSupported(t *testing.T) {
	if !schemaSupported("") {
		t.Error("empty schema version should be treated as supported (older dumps omit it)")
	}
	if !schemaSupported(mwdump.SchemaVersion(schema.MinInputSchema)) {
		t.Errorf("%s should be supported", schema.MinInputSchema)
	}
	if !schemaSupported(mwdump.SchemaVersion(schema.MaxInputSchema)) {
		t.Errorf("%s should be supported", schema.MaxInputSchema)
	}
	if schemaSupported("0.99") {
		t.Error("0.99 should not be supported")
	}
}

// Package sqlwire implements the MySQL-dialect SQL dump wire format
// shared by xml2sql (producer), sql2txt and sqlfilter (consumers): value
// escaping (C5), the multi-row INSERT batcher (C6), and the tuple reader
// (C12) that parses that same format back into tuples.
package sqlwire

import (
	"bytes"
	"strconv"
)

// Value is one column of one row. Exactly one of its accessors applies:
// a Value is a string, an integer, or NULL.
type Value struct {
	kind valueKind
	str  []byte
	num  int64
}

type valueKind int

const (
	kindNull valueKind = iota
	kindString
	kindInt
)

// Null is the SQL NULL value.
var Null = Value{kind: kindNull}

// String wraps a byte string (binary-safe) as a Value.
func String(b []byte) Value { return Value{kind: kindString, str: b} }

// Str is a convenience constructor for text columns.
func Str(s string) Value { return String([]byte(s)) }

// Int wraps an integer as a Value.
func Int(n int64) Value { return Value{kind: kindInt, num: n} }

// Bool encodes a MySQL tinyint-style boolean (0 or 1).
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// IsNull reports whether v is SQL NULL.
func (v Value) IsNull() bool { return v.kind == kindNull }

// Bytes returns the underlying byte string. Only meaningful when
// v.kind == kindString.
func (v Value) Bytes() []byte { return v.str }

// Int64 returns the underlying integer. Only meaningful when
// v.kind == kindInt.
func (v Value) Int64() int64 { return v.num }

// TabText renders v the way sql2txt emits a column: "\N" for NULL, the
// raw bytes for a string, or the decimal digits for an integer.
func (v Value) TabText() []byte {
	switch v.kind {
	case kindNull:
		return []byte(`\N`)
	case kindInt:
		return strconv.AppendInt(nil, v.num, 10)
	default:
		return v.str
	}
}

// escapeTable maps every byte that needs a backslash escape in a MySQL
// string literal (mysqldump --hex-blob=0 compatible, per spec §4.5) to
// its escaped form. Every other byte is emitted verbatim: the escaper is
// total.
var escapeTable = map[byte][]byte{
	0:    []byte(`\0`),
	'\n': []byte(`\n`),
	'\r': []byte(`\r`),
	'\\': []byte(`\\`),
	'\'': []byte(`\'`),
	'"':  []byte(`\"`),
	0x1a: []byte(`\Z`),
}

// AppendEscaped appends v's MySQL literal encoding to dst and returns the
// extended slice.
func AppendEscaped(dst []byte, v Value) []byte {
	switch v.kind {
	case kindNull:
		return append(dst, "NULL"...)
	case kindInt:
		return strconv.AppendInt(dst, v.num, 10)
	default:
		dst = append(dst, '\'')
		dst = appendEscapedBytes(dst, v.str)
		dst = append(dst, '\'')
		return dst
	}
}

func appendEscapedBytes(dst []byte, s []byte) []byte {
	start := 0
	for i, b := range s {
		if esc, ok := escapeTable[b]; ok {
			dst = append(dst, s[start:i]...)
			dst = append(dst, esc...)
			start = i + 1
		}
	}
	return append(dst, s[start:]...)
}

// FormatTuple renders a full "(v1,v2,...)" tuple.
func FormatTuple(values []Value) []byte {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(AppendEscaped(nil, v))
	}
	buf.WriteByte(')')
	return buf.Bytes()
}

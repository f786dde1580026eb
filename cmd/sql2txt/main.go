// sql2txt reads a MySQL-dialect SQL dump (the same wire format xml2sql
// produces) and writes one tab-separated line per tuple, for piping into
// line-oriented tools such as grep and cut.
package main

import (
	"bufio"
	"io"
	"log"
	"os"

	"github.com/wikidump/xml2sql/sqlwire"
	"github.com/wikidump/xml2sql/xmlstream"
	"gopkg.in/alecthomas/kingpin.v1"
)

const version = "sql2txt 1.0.0"

var (
	sqlIn = kingpin.Flag("sql-in", "SQL dump to read (default: stdin)").String()
	out   = kingpin.Flag("out", "output path (default: stdout)").String()
)

func main() {
	kingpin.Version(version)
	kingpin.Parse()
	log.SetPrefix("sql2txt ")
	log.SetFlags(0)

	if err := run(); err != nil {
		log.Println(err)
		os.Exit(2)
	}
}

func run() error {
	var r io.Reader = os.Stdin
	if *sqlIn != "" {
		in, err := xmlstream.OpenRead(*sqlIn, false)
		if err != nil {
			return err
		}
		defer in.Close()
		r = in
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		o, err := xmlstream.OpenWrite(*out, xmlstream.WriterOptions{})
		if err != nil {
			return err
		}
		defer o.Close()
		w = o
	}
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	tr := sqlwire.NewTupleReader(r)
	for {
		tuple, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := writeTabSeparated(bw, tuple); err != nil {
			return err
		}
	}
}

func writeTabSeparated(w *bufio.Writer, tuple []sqlwire.Value) error {
	for i, v := range tuple {
		if i > 0 {
			w.WriteByte('\t')
		}
		w.Write(v.TabText())
	}
	return w.WriteByte('\n')
}

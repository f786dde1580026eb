// sqlfilter reads a MySQL-dialect SQL dump and re-emits only the tuples
// whose Nth column matches a given set of accepted values, as multi-row
// INSERT statements into the --table table, batched under the
// --batch-bytes soft cap; the input's statement boundaries and table name
// are not kept.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/wikidump/xml2sql/sqlwire"
	"github.com/wikidump/xml2sql/xmlstream"
	"gopkg.in/alecthomas/kingpin.v1"
)

const version = "sqlfilter 1.0.0"

var (
	table    = kingpin.Flag("table", "table name for the INSERT statements emitted").Default("filtered").String()
	column   = kingpin.Flag("column", "0-based column index to match").Required().Int()
	values   = kingpin.Flag("values", "accepted values: @path/to/file, or a comma-separated list").Required().String()
	sqlIn    = kingpin.Flag("sql-in", "SQL dump to read (default: stdin)").String()
	out      = kingpin.Flag("out", "output path (default: stdout)").String()
	softCap  = kingpin.Flag("batch-bytes", "soft cap per emitted INSERT statement").Default("1048576").Int()
)

func main() {
	kingpin.Version(version)
	kingpin.Parse()
	log.SetPrefix("sqlfilter ")
	log.SetFlags(0)

	if err := run(); err != nil {
		log.Println(err)
		os.Exit(2)
	}
}

func run() error {
	accepted, err := loadValueSet(*values)
	if err != nil {
		return err
	}

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

	batcher := sqlwire.NewBatcher(bw, *table, *softCap)

	tr := sqlwire.NewTupleReader(r)
	for {
		tuple, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if *column >= len(tuple) {
			continue
		}
		if !accepted[string(tuple[*column].TabText())] {
			continue
		}
		if err := batcher.Add(tuple); err != nil {
			return err
		}
	}
	return batcher.Flush()
}

func loadValueSet(spec string) (map[string]bool, error) {
	set := make(map[string]bool)
	if strings.HasPrefix(spec, "@") {
		f, err := os.Open(spec[1:])
		if err != nil {
			return nil, fmt.Errorf("sqlfilter: %w", err)
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line != "" {
				set[line] = true
			}
		}
		return set, sc.Err()
	}
	for _, v := range strings.Split(spec, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = true
		}
	}
	return set, nil
}

// xml2sql converts a MediaWiki stub + content XML dump pair into SQL
// INSERT statements for the page, revision and text tables.
//
// Run with --help for command-line usage.
package main

import (
	"log"
	"os"

	"github.com/wikidump/xml2sql/join"
	"github.com/wikidump/xml2sql/mwdump"
	"github.com/wikidump/xml2sql/schema"
	"github.com/wikidump/xml2sql/sqlwire"
	"github.com/wikidump/xml2sql/xmlstream"
	"gopkg.in/alecthomas/kingpin.v1"
)

const version = "xml2sql 1.0.0"

var (
	stubsPath   = kingpin.Flag("stubs", "stub XML input").Required().String()
	textPath    = kingpin.Flag("text", "content XML input").Required().String()
	sqlPrefix   = kingpin.Flag("sql", "output path prefix").Required().String()
	mwVersion   = kingpin.Flag("mwversion", "target MediaWiki schema version").Default("1.29").String()
	startID     = kingpin.Flag("startid", "first text_id to assign").Default("1").Int()
	desyncLimit = kingpin.Flag("desync-tolerance", "max revisions the content stream may lag or lead before aborting").Default("1000").Int()
	bzip2Level  = kingpin.Flag("bzip2-level", "bzip2 compression level for .bz2 outputs").Default("0").Int()
	verbose     = kingpin.Flag("verbose", "progress counters to stderr").Bool()
)

// exit codes, per spec §6.
const (
	exitOK        = 0
	exitUsage     = 1
	exitIOOrCodec = 2
	exitXML       = 3
	exitDesync    = 4
)

func main() {
	kingpin.Version(version)
	kingpin.Parse()
	log.SetPrefix("xml2sql ")
	log.SetFlags(0)

	os.Exit(run())
}

func run() int {
	variant, err := schema.Lookup(*mwVersion)
	if err != nil {
		log.Println(err)
		return exitUsage
	}

	stubStream, err := xmlstream.OpenRead(*stubsPath, *verbose)
	if err != nil {
		log.Println(err)
		return exitIOOrCodec
	}
	defer stubStream.Close()

	contentStream, err := xmlstream.OpenRead(*textPath, *verbose)
	if err != nil {
		log.Println(err)
		return exitIOOrCodec
	}
	defer contentStream.Close()

	wopts := xmlstream.WriterOptions{Bzip2Level: *bzip2Level}
	pageOut, err := xmlstream.OpenWrite(*sqlPrefix+"-page.sql", wopts)
	if err != nil {
		log.Println(err)
		return exitIOOrCodec
	}
	defer pageOut.Close()

	revisionOut, err := xmlstream.OpenWrite(*sqlPrefix+"-revision.sql", wopts)
	if err != nil {
		log.Println(err)
		return exitIOOrCodec
	}
	defer revisionOut.Close()

	textOut, err := xmlstream.OpenWrite(*sqlPrefix+"-text.sql", wopts)
	if err != nil {
		log.Println(err)
		return exitIOOrCodec
	}
	defer textOut.Close()

	stub, err := mwdump.NewStubReader(xmlstream.NewLineBuffer(stubStream, 0))
	if err != nil {
		log.Println(err)
		return mapParseError(err)
	}
	content, err := mwdump.NewContentReader(xmlstream.NewLineBuffer(contentStream, 0))
	if err != nil {
		log.Println(err)
		return mapParseError(err)
	}
	if !schemaSupported(stub.Version) || !schemaSupported(content.Version) {
		log.Printf("unsupported input schema: stub=%s content=%s", stub.Version, content.Version)
		return exitUsage
	}

	ctx := join.NewContext()
	ctx.StartID = uint32(*startID)
	ctx.DesyncTolerance = *desyncLimit
	ctx.Verbose = *verbose

	sinks := &join.Sinks{
		Page:     sqlwire.NewBatcher(pageOut, "page", 0),
		Revision: sqlwire.NewBatcher(revisionOut, "revision", 0),
		Text:     sqlwire.NewBatcher(textOut, "text", 0),
	}

	if err := join.Run(ctx, variant, stub, content, sinks); err != nil {
		log.Println(err)
		return mapParseError(err)
	}

	log.Println(ctx.Stats.Summary())
	return exitOK
}

func schemaSupported(v mwdump.SchemaVersion) bool {
	if v == "" {
		return true // plenty of real dumps omit the attribute
	}
	return schema.SupportsInputSchema(string(v))
}

func mapParseError(err error) int {
	switch err.(type) {
	case *join.DesyncError:
		return exitDesync
	case *xmlstream.XMLError:
		return exitXML
	case *xmlstream.IOError, *xmlstream.CodecError:
		return exitIOOrCodec
	default:
		return exitIOOrCodec
	}
}

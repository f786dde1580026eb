package join

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wikidump/xml2sql/mwdump"
	"github.com/wikidump/xml2sql/schema"
	"github.com/wikidump/xml2sql/sqlwire"
)

const stubE1 = `<mediawiki version="0.10">
  <page>
    <title>Main Page</title>
    <ns>0</ns>
    <id>1</id>
    <revision>
      <id>10</id>
      <timestamp>2013-01-15T12:00:00Z</timestamp>
      <contributor><username>Bob</username><id>2</id></contributor>
      <comment>hi</comment>
      <text bytes="5" id="1" />
    </revision>
  </page>
</mediawiki>`

const contentE1 = `<mediawiki version="0.10">
  <page>
    <id>1</id>
    <revision>
      <id>10</id>
      <text id="1">Hello</text>
    </revision>
  </page>
</mediawiki>`

func run(t *testing.T, stubXML, contentXML string, configure func(*Context)) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, *Context) {
	t.Helper()
	stub, err := mwdump.NewStubReader(strings.NewReader(stubXML))
	if err != nil {
		t.Fatal(err)
	}
	content, err := mwdump.NewContentReader(strings.NewReader(contentXML))
	if err != nil {
		t.Fatal(err)
	}
	variant, err := schema.Lookup("1.29")
	if err != nil {
		t.Fatal(err)
	}

	var pageBuf, revBuf, textBuf bytes.Buffer
	sinks := &Sinks{
		Page:     sqlwire.NewBatcher(&pageBuf, "page", 0),
		Revision: sqlwire.NewBatcher(&revBuf, "revision", 0),
		Text:     sqlwire.NewBatcher(&textBuf, "text", 0),
	}
	ctx := NewContext()
	if configure != nil {
		configure(ctx)
	}
	if err := Run(ctx, variant, stub, content, sinks); err != nil {
		t.Fatal(err)
	}
	return &pageBuf, &revBuf, &textBuf, ctx
}

func TestE1MinimalPage(t *testing.T) {
	_, revBuf, textBuf, ctx := run(t, stubE1, contentE1, nil)

	if ctx.Stats.Pages != 1 || ctx.Stats.Revisions != 1 || ctx.Stats.TextRows != 1 {
		t.Fatalf("stats = %+v", ctx.Stats)
	}
	if !strings.Contains(revBuf.String(), "20130115120000") {
		t.Errorf("revision row missing formatted timestamp: %s", revBuf.String())
	}
	if !strings.Contains(textBuf.String(), "'Hello'") {
		t.Errorf("text row missing content: %s", textBuf.String())
	}
	if !strings.Contains(textBuf.String(), "INSERT INTO `text` VALUES (1,") {
		t.Errorf("expected text_id 1 (--startid default), got: %s", textBuf.String())
	}
}

const stubE2 = `<mediawiki version="0.10">
  <page>
    <title>Deleted</title><ns>0</ns><id>1</id>
    <revision>
      <id>10</id>
      <timestamp>2013-01-15T12:00:00Z</timestamp>
      <contributor><username>Bob</username><id>2</id></contributor>
      <comment>hi</comment>
      <text bytes="0" id="1" deleted="deleted" />
    </revision>
  </page>
</mediawiki>`

const contentE2 = `<mediawiki version="0.10">
  <page>
    <id>1</id>
    <revision>
      <id>10</id>
      <text id="1" deleted="deleted"><deleted/></text>
    </revision>
  </page>
</mediawiki>`

func TestE2DeletedText(t *testing.T) {
	_, revBuf, textBuf, _ := run(t, stubE2, contentE2, nil)
	if !strings.Contains(textBuf.String(), "(1,'',") {
		t.Errorf("expected empty old_text, got %s", textBuf.String())
	}
	// rev_minor_edit=0 immediately followed by rev_deleted=1 (the
	// DeletedText bit) then rev_len=0, rev_parent_id=0.
	if !strings.Contains(revBuf.String(), "'20130115120000',0,1,0,0,") {
		t.Errorf("expected rev_deleted set, got %s", revBuf.String())
	}
}

const stubE3 = `<mediawiki version="0.10">
  <page>
    <title>IP edit</title><ns>0</ns><id>1</id>
    <revision>
      <id>10</id>
      <timestamp>2013-01-15T12:00:00Z</timestamp>
      <contributor><ip>192.0.2.1</ip></contributor>
      <comment>hi</comment>
      <text bytes="1" id="1" />
    </revision>
  </page>
</mediawiki>`

const contentE3 = `<mediawiki version="0.10">
  <page><id>1</id>
    <revision><id>10</id><text id="1">x</text></revision>
  </page>
</mediawiki>`

func TestE3IPContributor(t *testing.T) {
	_, revBuf, _, _ := run(t, stubE3, contentE3, nil)
	if !strings.Contains(revBuf.String(), "0,'192.0.2.1'") {
		t.Errorf("expected rev_user=0, rev_user_text='192.0.2.1', got %s", revBuf.String())
	}
}

const stubE5 = `<mediawiki version="0.10">
  <page>
    <title>Gap</title><ns>0</ns><id>1</id>
    <revision>
      <id>100</id>
      <timestamp>2013-01-15T12:00:00Z</timestamp>
      <contributor><username>Bob</username><id>2</id></contributor>
      <comment>hi</comment>
      <text bytes="1" id="1" />
    </revision>
  </page>
</mediawiki>`

const contentE5 = `<mediawiki version="0.10">
  <page><id>1</id>
    <revision><id>101</id><text id="1">y</text></revision>
  </page>
</mediawiki>`

func TestE5Desync(t *testing.T) {
	_, _, textBuf, ctx := run(t, stubE5, contentE5, nil)
	if ctx.Stats.MissingContentRevisions != 1 {
		t.Errorf("expected one missing-content warning, got %+v", ctx.Stats)
	}
	if !strings.Contains(textBuf.String(), "(1,'',") {
		t.Errorf("expected empty text for unmatched revision, got %s", textBuf.String())
	}
}

const stubDupTextID = `<mediawiki version="0.10">
  <page>
    <title>Dup</title><ns>0</ns><id>1</id>
    <revision>
      <id>10</id>
      <timestamp>2013-01-15T12:00:00Z</timestamp>
      <contributor><username>Bob</username><id>2</id></contributor>
      <comment>hi</comment>
      <text bytes="5" id="7" />
    </revision>
    <revision>
      <id>12</id>
      <timestamp>2013-01-16T12:00:00Z</timestamp>
      <contributor><username>Bob</username><id>2</id></contributor>
      <comment>hi2</comment>
      <text bytes="6" id="7" />
    </revision>
  </page>
</mediawiki>`

const contentDupTextID = `<mediawiki version="0.10">
  <page>
    <id>1</id>
    <revision><id>10</id><text id="7">first</text></revision>
    <revision><id>12</id><text id="7">second</text></revision>
  </page>
</mediawiki>`

func TestE4DuplicateTextIDDedup(t *testing.T) {
	_, _, textBuf, ctx := run(t, stubDupTextID, contentDupTextID, nil)

	if ctx.Stats.SkippedDuplicateText != 1 {
		t.Errorf("expected 1 skipped duplicate text, got %+v", ctx.Stats)
	}
	if ctx.Stats.MissingContentRevisions != 1 {
		// rev 12's content counterpart was discarded as a duplicate
		// text_id, so it ends up unmatched, same as any other gap.
		t.Errorf("expected rev 12 to be reported missing content, got %+v", ctx.Stats)
	}
	if !strings.Contains(textBuf.String(), "'first'") {
		t.Errorf("expected the first occurrence's text to survive, got %s", textBuf.String())
	}
	if strings.Contains(textBuf.String(), "'second'") {
		t.Errorf("expected the duplicate occurrence's text to be discarded, got %s", textBuf.String())
	}
}

const validSHA1Literal = "0123456789abcdefghijklmnopqrstu"

const stubSHA1Trust = `<mediawiki version="0.10">
  <page>
    <title>Trusted</title><ns>0</ns><id>1</id>
    <revision>
      <id>10</id>
      <timestamp>2013-01-15T12:00:00Z</timestamp>
      <contributor><username>Bob</username><id>2</id></contributor>
      <comment>hi</comment>
      <text bytes="2" id="1" />
    </revision>
  </page>
</mediawiki>`

func contentSHA1Trust() string {
	return `<mediawiki version="0.10">
  <page>
    <id>1</id>
    <revision>
      <id>10</id>
      <sha1>` + validSHA1Literal + `</sha1>
      <text id="1">Hi</text>
    </revision>
  </page>
</mediawiki>`
}

func TestSHA1TrustedVerbatim(t *testing.T) {
	_, revBuf, _, _ := run(t, stubSHA1Trust, contentSHA1Trust(), nil)
	if !strings.Contains(revBuf.String(), "'"+validSHA1Literal+"'") {
		t.Errorf("expected content's <sha1> to be trusted verbatim rather than recomputed, got %s", revBuf.String())
	}
}

func TestDesyncErrorContentAheadBeyondTolerance(t *testing.T) {
	stub, err := mwdump.NewStubReader(strings.NewReader(`<mediawiki version="0.10">
  <page><title>T</title><ns>0</ns><id>1</id>
    <revision><id>1</id><timestamp>2013-01-15T12:00:00Z</timestamp>
      <contributor><username>Bob</username><id>2</id></contributor>
      <comment>hi</comment><text bytes="1" id="1" /></revision>
  </page>
</mediawiki>`))
	if err != nil {
		t.Fatal(err)
	}
	content, err := mwdump.NewContentReader(strings.NewReader(`<mediawiki version="0.10">
  <page><id>1</id><revision><id>5000</id><text id="1">z</text></revision></page>
</mediawiki>`))
	if err != nil {
		t.Fatal(err)
	}
	variant, _ := schema.Lookup("1.29")
	var pageBuf, revBuf, textBuf bytes.Buffer
	sinks := &Sinks{
		Page:     sqlwire.NewBatcher(&pageBuf, "page", 0),
		Revision: sqlwire.NewBatcher(&revBuf, "revision", 0),
		Text:     sqlwire.NewBatcher(&textBuf, "text", 0),
	}
	ctx := NewContext()
	ctx.DesyncTolerance = 10
	err = Run(ctx, variant, stub, content, sinks)
	if _, ok := err.(*DesyncError); !ok {
		t.Fatalf("expected *DesyncError for content running ahead of stub, got %v", err)
	}
}

func TestDesyncErrorBeyondTolerance(t *testing.T) {
	stub, err := mwdump.NewStubReader(strings.NewReader(`<mediawiki version="0.10">
  <page><title>T</title><ns>0</ns><id>1</id>
    <revision><id>5000</id><timestamp>2013-01-15T12:00:00Z</timestamp>
      <contributor><username>Bob</username><id>2</id></contributor>
      <comment>hi</comment><text bytes="1" id="1" /></revision>
  </page>
</mediawiki>`))
	if err != nil {
		t.Fatal(err)
	}
	content, err := mwdump.NewContentReader(strings.NewReader(`<mediawiki version="0.10">
  <page><id>1</id><revision><id>1</id><text id="1">z</text></revision></page>
</mediawiki>`))
	if err != nil {
		t.Fatal(err)
	}
	variant, _ := schema.Lookup("1.29")
	var pageBuf, revBuf, textBuf bytes.Buffer
	sinks := &Sinks{
		Page:     sqlwire.NewBatcher(&pageBuf, "page", 0),
		Revision: sqlwire.NewBatcher(&revBuf, "revision", 0),
		Text:     sqlwire.NewBatcher(&textBuf, "text", 0),
	}
	ctx := NewContext()
	ctx.DesyncTolerance = 10
	err = Run(ctx, variant, stub, content, sinks)
	if _, ok := err.(*DesyncError); !ok {
		t.Fatalf("expected *DesyncError, got %v", err)
	}
}

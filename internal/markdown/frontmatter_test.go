package markdown

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	fm, body, present, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if !present {
		t.Fatalf("expected metadata block to be detected")
	}

	if fm.Title != "Shipping The Release" {
		t.Fatalf("FrontMatter Title mismatch, got %q", fm.Title)
	}
	if fm.Author != "Mira Chen" {
		t.Fatalf("FrontMatter Author mismatch, got %q", fm.Author)
	}
	if !fm.Pin {
		t.Fatalf("expected Pin to be true")
	}
	if len(fm.Categories) != 2 || fm.Categories[0] != "releases" {
		t.Fatalf("FrontMatter Categories mismatch: %#v", fm.Categories)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "go" {
		t.Fatalf("FrontMatter Tags mismatch: %#v", fm.Tags)
	}
	if !fm.HasOrder() || *fm.Order != 2 {
		t.Fatalf("FrontMatter Order mismatch: %#v", fm.Order)
	}
	if fm.Icon != "rocket" {
		t.Fatalf("FrontMatter Icon mismatch, got %q", fm.Icon)
	}
	if fm.Custom["custom_flag"] != true {
		t.Fatalf("FrontMatter Custom flag missing: %#v", fm.Custom)
	}
	if fm.Raw["summary"] != "Sample summary goes here" {
		t.Fatalf("FrontMatter Raw summary missing: %#v", fm.Raw)
	}
	if fm.Raw["title"] != "Shipping The Release" {
		t.Fatalf("FrontMatter Raw should mirror recognized keys: %#v", fm.Raw)
	}
	if len(body) == 0 || !strings.Contains(string(body), "# Shipping The Release") {
		t.Fatalf("Markdown body not returned correctly: %q", string(body))
	}
}

func TestParseFrontMatterWithoutBlock(t *testing.T) {
	data := readFixture(t, "testdata/plain.md")

	fm, body, present, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if present {
		t.Fatalf("expected no metadata block")
	}
	if fm.Title != "" {
		t.Fatalf("expected empty title, got %q", fm.Title)
	}
	if fm.Pin {
		t.Fatalf("expected Pin default to be false")
	}
	if !bytes.Equal(body, data) {
		t.Fatalf("body should equal the whole source when no block exists")
	}
}

func TestParseFrontMatterBodyStartingWithBrace(t *testing.T) {
	source := []byte("{\"not\": \"front matter\"}\n\nStill just a body.\n")

	_, body, present, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if present {
		t.Fatalf("a JSON-looking body must not be treated as metadata")
	}
	if !bytes.Equal(body, source) {
		t.Fatalf("body should be untouched, got %q", string(body))
	}
}

func TestParseFrontMatterMalformedBlock(t *testing.T) {
	source := []byte("---\ntitle: [unclosed\n---\n\nBody text.\n")

	_, _, present, err := ParseFrontMatter(source)
	if err == nil {
		t.Fatalf("expected decode error for malformed block")
	}
	if !present {
		t.Fatalf("malformed block should still report presence")
	}
}

func TestParseFrontMatterNormalizesTerms(t *testing.T) {
	source := []byte("---\ntitle: Terms\ncategories: [\" go \", go, \"\", infra]\ntags: [a, a, b]\n---\n\nBody.\n")

	fm, _, _, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if len(fm.Categories) != 2 || fm.Categories[0] != "go" || fm.Categories[1] != "infra" {
		t.Fatalf("categories not normalized: %#v", fm.Categories)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "a" || fm.Tags[1] != "b" {
		t.Fatalf("tags not de-duplicated: %#v", fm.Tags)
	}
}

func TestParseFrontMatterTOML(t *testing.T) {
	source := []byte("+++\ntitle = \"From TOML\"\n+++\n\nBody.\n")

	fm, body, present, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if !present {
		t.Fatalf("expected TOML fence to be detected")
	}
	if fm.Title != "From TOML" {
		t.Fatalf("TOML title mismatch, got %q", fm.Title)
	}
	if !strings.Contains(string(body), "Body.") {
		t.Fatalf("body missing, got %q", string(body))
	}
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}

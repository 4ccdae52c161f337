package refparse

import (
	"testing"
)

func TestParse_SkipsFrontmatter(t *testing.T) {
	input := []byte("---\ntitle: Day\nrelated: \"[[not a ref]]\"\n---\n# Heading\n![[photo.png]]\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Day" {
		t.Errorf("title = %q, want %q", r.Title, "Day")
	}
	if len(r.References) != 1 {
		t.Fatalf("refs = %+v, want 1", r.References)
	}
	got := r.References[0]
	if got.Target != "photo.png" || !got.Embed || got.Kind != KindWikilink || got.Line != 6 {
		t.Errorf("ref = %+v", got)
	}
}

func TestParse_LineNumbersCountFrontmatter(t *testing.T) {
	input := []byte("---\ntitle: x\ntags: [a]\n---\n\n![[a.png]]\ntext\n[b](b.pdf)")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.References) != 2 {
		t.Fatalf("refs = %+v, want 2", r.References)
	}
	if r.References[0].Line != 6 || r.References[1].Line != 8 {
		t.Errorf("lines = %d, %d, want 6, 8", r.References[0].Line, r.References[1].Line)
	}

	r, _ = Parse([]byte("\n\n---\na: 1\n---\n[[c.png]]"))
	if len(r.References) != 1 || r.References[0].Line != 6 {
		t.Errorf("leading blank lines: refs = %+v", r.References)
	}
}

func TestExtractReferences_EscapedHashIsPartOfTarget(t *testing.T) {
	refs := extractReferences("[r](r%232.pdf) [s](s.pdf#page=2)", 1)
	if len(refs) != 2 || refs[0].Target != "r#2.pdf" || refs[1].Target != "s.pdf" {
		t.Errorf("refs = %+v", refs)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\n[[a.pdf]]\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if len(r.References) != 1 || r.References[0].Line != 4 {
		t.Errorf("refs = %+v", r.References)
	}
}

func TestExtractReferences_Wikilinks(t *testing.T) {
	refs := extractReferences("See [[report.pdf|the report]] and ![[scan 1.png#^abc]].\n[[ ]]", 1)
	if len(refs) != 2 {
		t.Fatalf("len(refs) = %d, want 2: %+v", len(refs), refs)
	}
	if refs[0].Target != "report.pdf" || refs[0].Alias != "the report" || refs[0].Embed {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1].Target != "scan 1.png" || !refs[1].Embed {
		t.Errorf("refs[1] = %+v", refs[1])
	}
}

func TestExtractReferences_MarkdownLinks(t *testing.T) {
	body := "![shot](assets/shot%201.png)\n[site](https://example.com/a)\n[doc](<files/a b.pdf> \"title\")"
	refs := extractReferences(body, 1)
	if len(refs) != 3 {
		t.Fatalf("len(refs) = %d, want 3: %+v", len(refs), refs)
	}
	if refs[0].Target != "assets/shot 1.png" || !refs[0].Embed || refs[0].Kind != KindMarkdown {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if !refs[1].External || refs[1].Line != 2 {
		t.Errorf("refs[1] = %+v", refs[1])
	}
	if refs[2].Target != "files/a b.pdf" {
		t.Errorf("refs[2] = %+v", refs[2])
	}
}

func TestExtractReferences_DocumentOrder(t *testing.T) {
	refs := extractReferences("[b](b.png) then [[a.png]]", 1)
	if len(refs) != 2 || refs[0].Target != "b.png" || refs[1].Target != "a.png" {
		t.Errorf("refs = %+v", refs)
	}
}

func TestTargets_DedupesAndSkipsExternal(t *testing.T) {
	r, _ := Parse([]byte("[[a.png]] ![[a.png]] [x](http://h/x) [[b.pdf]]"))
	got := r.Targets()
	if len(got) != 2 || got[0] != "a.png" || got[1] != "b.pdf" {
		t.Errorf("targets = %v", got)
	}
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	title := deriveTitle(nil, "some text\n# My Heading\nmore")
	if title != "My Heading" {
		t.Errorf("title = %q, want %q", title, "My Heading")
	}
}

// Package refparse extracts file references from Markdown documents.
package refparse

import (
	"bytes"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	wikilinkRe = regexp.MustCompile(`(!?)\[\[([^\[\]]*?)\]\]`)
	mdLinkRe   = regexp.MustCompile(`(!?)\[([^\[\]]*)\]\(\s*(?:<([^>]+)>|([^)\s]+))(?:\s+"[^"]*")?\s*\)`)
)

// Kind is the syntax a reference was written in.
type Kind string

const (
	KindWikilink Kind = "wikilink"
	KindMarkdown Kind = "markdown"
)

// Reference is one link or embed found in a document body.
type Reference struct {
	Kind   Kind   `json:"kind"`
	Target string `json:"target"`
	Alias  string `json:"alias,omitempty"`
	Embed  bool   `json:"embed"`
	Line   int    `json:"line"`
	// External is set for markdown links with a URL scheme.
	External bool `json:"external,omitempty"`
}

// Result holds the output of parsing a Markdown document.
type Result struct {
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Body        string         `json:"-"`
	Title       string         `json:"title"`
	References  []Reference    `json:"references"`
}

// Parse splits frontmatter from the body and collects references in
// document order.
func Parse(data []byte) (*Result, error) {
	fm, body, offset := splitFrontmatter(data)
	firstLine := 1 + bytes.Count(data[:offset], []byte("\n"))
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
		References:  extractReferences(body, firstLine),
	}, nil
}

// Targets returns the distinct local targets, in first-seen order.
func (r *Result) Targets() []string {
	seen := make(map[string]struct{}, len(r.References))
	var out []string
	for _, ref := range r.References {
		if ref.External {
			continue
		}
		if _, ok := seen[ref.Target]; ok {
			continue
		}
		seen[ref.Target] = struct{}{}
		out = append(out, ref.Target)
	}
	return out
}

// splitFrontmatter separates YAML frontmatter (between leading ---
// delimiters) from the body and returns the body's byte offset in data.
// Without valid frontmatter the whole content is body.
func splitFrontmatter(data []byte) (map[string]any, string, int) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), 0
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), 0
	}

	afterDelim := rest[idx+1+len(delim):]
	body := bytes.TrimLeft(afterDelim, "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return nil, string(data), 0
	}
	return fm, string(body), len(data) - len(body)
}

type match struct {
	offset int
	ref    Reference
}

// extractReferences collects the references in body. firstLine is the
// document line body starts on.
func extractReferences(body string, firstLine int) []Reference {
	var found []match

	for _, m := range wikilinkRe.FindAllStringSubmatchIndex(body, -1) {
		raw := body[m[4]:m[5]]
		target, alias := raw, ""
		if i := strings.Index(raw, "|"); i >= 0 {
			target, alias = raw[:i], strings.TrimSpace(raw[i+1:])
		}
		target = stripFragment(strings.TrimSpace(target))
		if target == "" {
			continue
		}
		found = append(found, match{offset: m[0], ref: Reference{
			Kind:   KindWikilink,
			Target: target,
			Alias:  alias,
			Embed:  m[3] > m[2],
		}})
	}

	for _, m := range mdLinkRe.FindAllStringSubmatchIndex(body, -1) {
		// Skip the inner "[x](y)" of a wikilink-looking construct.
		if m[0] > 0 && body[m[0]-1] == '[' {
			continue
		}
		var raw string
		if m[6] >= 0 {
			raw = body[m[6]:m[7]]
		} else {
			raw = body[m[8]:m[9]]
		}
		ref := Reference{
			Kind:  KindMarkdown,
			Alias: body[m[4]:m[5]],
			Embed: m[3] > m[2],
		}
		if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
			ref.Target, ref.External = raw, true
		} else {
			raw = stripFragment(raw)
			if unescaped, err := url.PathUnescape(raw); err == nil {
				raw = unescaped
			}
			ref.Target = strings.TrimSpace(raw)
		}
		if ref.Target == "" {
			continue
		}
		found = append(found, match{offset: m[0], ref: ref})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].offset < found[j].offset })

	refs := make([]Reference, 0, len(found))
	line, pos := firstLine, 0
	for _, f := range found {
		line += strings.Count(body[pos:f.offset], "\n")
		pos = f.offset
		f.ref.Line = line
		refs = append(refs, f.ref)
	}
	return refs
}

// stripFragment drops a "#heading" or "#^block" suffix.
func stripFragment(target string) string {
	if i := strings.Index(target, "#"); i >= 0 {
		target = target[:i]
	}
	return strings.TrimSpace(target)
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, body string) string {
	if t, ok := fm["title"].(string); ok && t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

package refparse

import (
	"path"
	"strings"
)

// ResolveTarget maps a reference target to a vault path from files, or ""
// when nothing matches. It tries, in order: the target as a vault path, the
// target relative to the document's folder, then a unique base-name match
// (case-insensitive). Wikilink targets without an extension also match
// ".md" files.
func ResolveTarget(target, documentPath string, files []string) string {
	target = strings.TrimPrefix(target, "/")
	if target == "" {
		return ""
	}
	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f] = struct{}{}
	}

	candidates := []string{target, path.Join(path.Dir(documentPath), target)}
	if path.Ext(target) == "" {
		candidates = append(candidates, target+".md", path.Join(path.Dir(documentPath), target+".md"))
	}
	for _, c := range candidates {
		if _, ok := present[c]; ok {
			return c
		}
	}

	if strings.Contains(target, "/") {
		return ""
	}
	base := strings.ToLower(target)
	var hit string
	for _, f := range files {
		name := strings.ToLower(path.Base(f))
		if name == base || name == base+".md" {
			if hit != "" {
				return ""
			}
			hit = f
		}
	}
	return hit
}

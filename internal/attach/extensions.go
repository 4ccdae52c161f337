// Package attach decides where a copied file lands in the vault and how the
// inserted reference to it is written.
package attach

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Class tells whether a file is rendered inline or as a plain link.
type Class int

const (
	Linkable Class = iota
	Embeddable
)

func (c Class) String() string {
	if c == Embeddable {
		return "embeddable"
	}
	return "linkable"
}

// embeddable is matched on the extension string only; file contents are
// never sniffed.
var embeddable = map[string]struct{}{
	// images
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "bmp": {}, "svg": {}, "webp": {},
	// audio
	"mp3": {}, "webm": {}, "wav": {}, "m4a": {}, "ogg": {}, "3gp": {}, "flac": {},
	// video (webm is listed under audio)
	"mp4": {}, "ogv": {}, "mov": {}, "mkv": {},
	// documents
	"pdf": {},
}

// NormalizeExt lower-cases ext and strips a leading dot.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// Classify returns the class for ext. Unknown extensions are Linkable.
func Classify(ext string) Class {
	if _, ok := embeddable[NormalizeExt(ext)]; ok {
		return Embeddable
	}
	return Linkable
}

// IsEmbeddable reports whether ext is in the embeddable set.
func IsEmbeddable(ext string) bool {
	return Classify(ext) == Embeddable
}

// EmbeddableExtensions returns a sorted copy of the embeddable set.
func EmbeddableExtensions() []string {
	out := make([]string, 0, len(embeddable))
	for ext := range embeddable {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Characters a vault file name may not contain.
var unsafeNameRe = regexp.MustCompile(`[\\/:*?"<>|#^\[\]\x00-\x1f]`)

// SanitizeName strips directory components and characters that would break
// a link or a vault path. An empty result falls back to a random name that
// keeps the original extension.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = unsafeNameRe.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")
	if name == "" || strings.Trim(name, "_") == "" {
		return uuid.New().String() + filepath.Ext(name)
	}
	return name
}

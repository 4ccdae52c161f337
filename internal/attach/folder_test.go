package attach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFolder(t *testing.T) {
	tests := []struct {
		setting, doc, want string
	}{
		{"", "notes/day.md", ""},
		{"/", "notes/day.md", ""},
		{"attachments", "notes/day.md", "attachments"},
		{"/assets/files/", "notes/day.md", "assets/files"},
		{"./", "notes/day.md", "notes"},
		{".", "day.md", ""},
		{"./img", "notes/sub/day.md", "notes/sub/img"},
		{"./img", "", "img"},
		{"../../escape", "notes/day.md", "escape"},
		{`assets\win`, "a.md", "assets/win"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Folder(tt.setting, tt.doc), "%q for %q", tt.setting, tt.doc)
	}
}

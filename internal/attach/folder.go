package attach

import (
	"path"
	"strings"
)

// Folder maps the attachment folder setting to a vault directory for a
// given document:
//
//	""  or "/"   vault root
//	"./"         the document's own folder
//	"./sub"      sub beneath the document's folder
//	"dir"        dir relative to the vault root
func Folder(setting, documentPath string) string {
	setting = strings.TrimSpace(strings.ReplaceAll(setting, "\\", "/"))
	docDir := path.Dir(path.Clean("/" + documentPath))

	var dir string
	switch {
	case setting == "" || setting == "/":
		dir = "/"
	case setting == "." || setting == "./":
		dir = docDir
	case strings.HasPrefix(setting, "./"):
		dir = path.Join(docDir, setting[2:])
	default:
		dir = path.Join("/", setting)
	}
	return strings.TrimPrefix(path.Clean(dir), "/")
}

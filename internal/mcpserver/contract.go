package mcpserver

import (
	"strings"

	"github.com/starford/localref/internal/attach"
)

const referenceFormatTemplate = `# localref Reference Format

Inserting a file copies it into the vault and puts a reference to the copy
into the document. The original file is never modified.

## Naming

- The copy keeps the source file name.
- When that name is taken in the attachment folder, a counter is added
  before the extension: ` + "`image.png`" + ` → ` + "`image 1.png`" + ` → ` + "`image 2.png`" + `.
- Existing files are never overwritten.

## Placement

The attachment folder comes from ` + "`vault.attachment_dir`" + `:

- empty or ` + "`/`" + `: vault root
- ` + "`./`" + `: the document's folder
- ` + "`./sub`" + `: ` + "`sub`" + ` beneath the document's folder
- anything else: that folder relative to the vault root

## Links and embeds

- Files with an embeddable extension get a leading ` + "`!`" + ` (embed):
  ` + "`![[photo.png]]`" + `
- Every other file is linked: ` + "`[[report.docx]]`" + `
- Extensions are compared case-insensitively; content is never inspected.

Embeddable extensions: {{EXTENSIONS}}.
`

// ReferenceFormatContract describes how files are named, placed and
// referenced.
func ReferenceFormatContract() string {
	return strings.Replace(referenceFormatTemplate, "{{EXTENSIONS}}",
		strings.Join(attach.EmbeddableExtensions(), ", "), 1)
}

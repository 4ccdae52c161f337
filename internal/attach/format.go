package attach

import (
	"strings"

	"github.com/starford/localref/internal/models"
)

// EmbedMarker turns a link into an inline embed.
const EmbedMarker = "!"

// LinkGenerator renders the link body for a vault file as seen from the
// referencing document. Link style is its concern, not ours.
type LinkGenerator interface {
	GenerateLink(target models.Destination, documentPath string) (string, error)
}

// Format builds the reference text for dest. Embeddable files get the embed
// marker unless the generator already produced one.
func Format(dest models.Destination, ext, documentPath string, gen LinkGenerator) (string, error) {
	body, err := gen.GenerateLink(dest, documentPath)
	if err != nil {
		return "", err
	}
	if IsEmbeddable(ext) && !strings.HasPrefix(body, EmbedMarker) {
		return EmbedMarker + body, nil
	}
	return body, nil
}

package picker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/localref/internal/apperr"
)

func TestStatic_ResolvesAgainstDefaultDir(t *testing.T) {
	s := Static{Paths: []string{"scan.pdf", "/abs/x.png", " "}, DefaultDir: "/data/inbox"}
	got := s.Pick(context.Background())
	assert.Equal(t, []string{
		filepath.FromSlash("/data/inbox/scan.pdf"),
		filepath.FromSlash("/abs/x.png"),
	}, got)
}

func TestStatic_EmptyIsNoSelection(t *testing.T) {
	assert.Nil(t, Static{}.Pick(context.Background()))
}

func TestResolve_Home(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	assert.Equal(t, filepath.Join(home, "a.png"), Resolve("~/a.png", "/x"))
	assert.Equal(t, filepath.Join(home, "b.png"), Resolve("b.png", ""))
	assert.Equal(t, filepath.Join(home, "pics", "c.png"), Resolve("c.png", "~/pics"))
}

func TestPrompt_ReadsLine(t *testing.T) {
	var out bytes.Buffer
	p := Prompt{In: strings.NewReader("photo.JPG\n"), Out: &out, DefaultDir: "/pics"}
	got := p.Pick(context.Background())
	assert.Equal(t, []string{filepath.FromSlash("/pics/photo.JPG")}, got)
	assert.Contains(t, out.String(), "[/pics]")
}

func TestPrompt_EmptyLineCancels(t *testing.T) {
	p := Prompt{In: strings.NewReader("\n"), Out: &bytes.Buffer{}, DefaultDir: "/pics"}
	assert.Nil(t, p.Pick(context.Background()))
}

func TestPrompt_EOFCancels(t *testing.T) {
	p := Prompt{In: strings.NewReader(""), Out: &bytes.Buffer{}, DefaultDir: "/pics"}
	assert.Nil(t, p.Pick(context.Background()))
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) { select {} }

func TestPrompt_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := Prompt{In: blockingReader{}, Out: &bytes.Buffer{}}
	assert.Nil(t, p.Pick(ctx))
}

func TestConfine(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	inside := filepath.Join(root, "sub", "a.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(inside), 0o755))
	require.NoError(t, os.WriteFile(inside, []byte("a"), 0o644))

	got, err := Confine(root, []string{inside, filepath.Join(root, "missing.png")})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	for _, p := range []string{
		filepath.Join(outside, "id_rsa"),
		filepath.Join(root, "..", filepath.Base(outside), "id_rsa"),
		Resolve("../escape.txt", root),
	} {
		_, err := Confine(root, []string{p})
		assert.ErrorIs(t, err, apperr.ErrForbidden, p)
	}

	_, err = Confine("", []string{inside})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	got, err = Confine("", nil)
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestConfine_SymlinkOut(t *testing.T) {
	root := t.TempDir()
	secret := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("s"), 0o644))
	link := filepath.Join(root, "link.txt")
	if err := os.Symlink(secret, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	_, err := Confine(root, []string{link})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

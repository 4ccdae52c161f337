package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/starford/localref/internal/apperr"
)

func TestAvailablePath_Free(t *testing.T) {
	s := tempVault(t)
	got, err := s.Folder("attachments").AvailablePath("image.png")
	if err != nil {
		t.Fatalf("AvailablePath: %v", err)
	}
	if got != "attachments/image.png" {
		t.Errorf("path = %q", got)
	}
	if s.Exists("attachments") {
		t.Error("AvailablePath must not create the folder")
	}
}

func TestAvailablePath_CollisionSuffix(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("image.png", []byte("1"))
	got, err := s.Folder("").AvailablePath("image.png")
	if err != nil {
		t.Fatalf("AvailablePath: %v", err)
	}
	if got != "image 1.png" {
		t.Errorf("path = %q, want %q", got, "image 1.png")
	}

	_ = s.Write("image 1.png", []byte("2"))
	_ = s.Write("image 2.png", []byte("3"))
	got, _ = s.Folder("").AvailablePath("image.png")
	if got != "image 3.png" {
		t.Errorf("path = %q, want %q", got, "image 3.png")
	}
}

func TestAvailablePath_NoExtensionAndDotfile(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("docs/README", []byte("x"))
	_ = s.Write("docs/.env", []byte("x"))
	f := s.Folder("docs")

	for name, want := range map[string]string{
		"README": "docs/README 1",
		".env":   "docs/.env 1",
	} {
		got, err := f.AvailablePath(name)
		if err != nil {
			t.Fatalf("AvailablePath(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("AvailablePath(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestAvailablePath_ResultNeverExists(t *testing.T) {
	s := tempVault(t)
	f := s.Folder("att")
	for i := 0; i < 5; i++ {
		p, err := f.AvailablePath("clip.mp4")
		if err != nil {
			t.Fatalf("AvailablePath: %v", err)
		}
		if s.Exists(p) {
			t.Fatalf("returned existing path %q", p)
		}
		if err := s.Create(p, []byte(fmt.Sprint(i))); err != nil {
			t.Fatalf("Create(%q): %v", p, err)
		}
	}
	items, _ := s.List("att")
	if len(items) != 5 {
		t.Errorf("files = %d, want 5", len(items))
	}
}

func TestAvailablePath_FolderIsFile(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("attachments", []byte("not a dir"))
	_, err := s.Folder("attachments").AvailablePath("a.png")
	if !errors.Is(err, apperr.ErrDestinationUnavailable) {
		t.Errorf("err = %v, want ErrDestinationUnavailable", err)
	}
}

func TestFolder_ClampsTraversal(t *testing.T) {
	s := tempVault(t)
	got, err := s.Folder("../../outside").AvailablePath("a.png")
	if err != nil || got != "outside/a.png" {
		t.Errorf("AvailablePath = %q, %v", got, err)
	}
	got, err = s.Folder("/").AvailablePath("a.png")
	if err != nil || got != "a.png" {
		t.Errorf("AvailablePath = %q, %v", got, err)
	}
}

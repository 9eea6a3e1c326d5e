package surface

import (
	"errors"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/google/go-cmp/cmp"
)

func openMemory(t *testing.T) (*Memory, Surface) {
	t.Helper()
	dev := NewMemory()
	s, err := dev.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return dev, s
}

func TestMemoryCommitsFrames(t *testing.T) {
	dev, s := openMemory(t)

	if err := s.AddText("hello", 10, 0, 16, "heading"); err != nil {
		t.Fatalf("AddText: %v", err)
	}
	if err := s.AddText("·", 0, 0, 16, "pulse"); err != nil {
		t.Fatalf("AddText: %v", err)
	}
	if err := s.WriteAll(false); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	if err := s.UpdateText("heading", "world"); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}
	if err := s.RemoveText("pulse"); err != nil {
		t.Fatalf("RemoveText: %v", err)
	}
	if err := s.WriteAll(true); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	want := []Frame{
		{Elements: []Element{
			{Ident: "heading", Text: "hello", X: 10, Y: 0, Size: 16},
			{Ident: "pulse", Text: "·", X: 0, Y: 0, Size: 16},
		}},
		{Elements: []Element{
			{Ident: "heading", Text: "world", X: 10, Y: 0, Size: 16},
		}, Partial: true},
	}
	if diff := cmp.Diff(want, dev.Frames()); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryIdentErrors(t *testing.T) {
	_, s := openMemory(t)

	if err := s.AddText("a", 0, 0, 12, "id1"); err != nil {
		t.Fatalf("AddText: %v", err)
	}
	if err := s.AddText("b", 0, 0, 12, "id1"); !errdefs.IsAlreadyExists(err) {
		t.Fatalf("duplicate AddText error = %v, want already exists", err)
	}
	if err := s.UpdateText("missing", "x"); !errdefs.IsNotFound(err) {
		t.Fatalf("UpdateText error = %v, want not found", err)
	}
	if err := s.RemoveText("missing"); !errdefs.IsNotFound(err) {
		t.Fatalf("RemoveText error = %v, want not found", err)
	}
}

func TestMemoryClearInvalidatesIdents(t *testing.T) {
	dev, s := openMemory(t)

	s.AddText("a", 0, 0, 12, "id1")
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := s.UpdateText("id1", "b"); !errdefs.IsNotFound(err) {
		t.Fatalf("UpdateText after Clear error = %v, want not found", err)
	}
	if len(dev.Frames()) != 0 {
		t.Fatal("Clear committed a frame")
	}

	// The ident is free again.
	if err := s.AddText("c", 0, 0, 12, "id1"); err != nil {
		t.Fatalf("AddText after Clear: %v", err)
	}
}

func TestMemoryClose(t *testing.T) {
	dev, s := openMemory(t)
	if n := dev.OpenSurfaces(); n != 1 {
		t.Fatalf("OpenSurfaces = %d, want 1", n)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := dev.OpenSurfaces(); n != 0 {
		t.Fatalf("OpenSurfaces = %d, want 0", n)
	}

	if err := s.WriteAll(false); !errors.Is(err, ErrClosed) || !errdefs.IsUnavailable(err) {
		t.Fatalf("WriteAll after Close error = %v, want ErrClosed", err)
	}
	if err := s.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("second Close error = %v, want ErrClosed", err)
	}
}

func TestMemorySurfacesAreIndependent(t *testing.T) {
	dev := NewMemory()
	a, _ := dev.Open()
	b, _ := dev.Open()

	a.AddText("a", 0, 0, 12, "id1")
	if err := b.AddText("b", 0, 0, 12, "id1"); err != nil {
		t.Fatalf("ident shared between surfaces: %v", err)
	}
}

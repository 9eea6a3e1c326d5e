package surface

import (
	"slices"
	"sync"
)

// A committed page, as recorded by [Memory].
type Frame struct {
	Elements []Element
	Partial  bool
}

// A display that records every committed frame in memory.
type Memory struct {
	mu     sync.Mutex
	frames []Frame
	open   int
}

// Creates a new in-memory display with no frames.
func NewMemory() *Memory {
	return &Memory{}
}

// Opens a new, empty surface on the display.
func (m *Memory) Open() (Surface, error) {
	m.mu.Lock()
	m.open++
	m.mu.Unlock()

	return &memorySurface{dev: m, page: newPage()}, nil
}

// Returns the frames committed so far, oldest first.
func (m *Memory) Frames() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Frame, len(m.frames))
	for i, f := range m.frames {
		out[i] = Frame{Elements: slices.Clone(f.Elements), Partial: f.Partial}
	}
	return out
}

// Returns the number of surfaces opened and not yet closed.
func (m *Memory) OpenSurfaces() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

func (m *Memory) commit(f Frame) {
	m.mu.Lock()
	m.frames = append(m.frames, f)
	m.mu.Unlock()
}

func (m *Memory) release() {
	m.mu.Lock()
	m.open--
	m.mu.Unlock()
}

type memorySurface struct {
	dev    *Memory
	page   *page
	closed bool
}

func (s *memorySurface) AddText(text string, x, y, size int, ident string) error {
	if s.closed {
		return ErrClosed
	}
	return s.page.add(Element{Ident: ident, Text: text, X: x, Y: y, Size: size})
}

func (s *memorySurface) UpdateText(ident, newText string) error {
	if s.closed {
		return ErrClosed
	}
	_, err := s.page.update(ident, newText)
	return err
}

func (s *memorySurface) RemoveText(ident string) error {
	if s.closed {
		return ErrClosed
	}
	_, err := s.page.remove(ident)
	return err
}

func (s *memorySurface) Clear() error {
	if s.closed {
		return ErrClosed
	}
	s.page.clear()
	return nil
}

func (s *memorySurface) WriteAll(partial bool) error {
	if s.closed {
		return ErrClosed
	}
	s.dev.commit(Frame{Elements: s.page.elements(), Partial: partial})
	return nil
}

func (s *memorySurface) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.dev.release()
	return nil
}

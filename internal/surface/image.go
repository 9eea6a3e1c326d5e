package surface

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/containerd/errdefs"
	"github.com/inkhq/inkd/internal/paths"
	"github.com/opencontainers/go-digest"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (

	// Width of the 2.7" panel, in pixels.
	DefaultWidth = 264

	// Height of the 2.7" panel, in pixels.
	DefaultHeight = 176

	// Largest font size accepted by default, as a multiple of the canvas
	// height. Glyph masks are allocated at full size before clipping.
	maxFontSizeFactor = 4

	// Resolution at which font sizes are interpreted. At 72 DPI one point is
	// one pixel.
	fontDPI = 72
)

// Holds image device configuration.
type ImageConfig struct {
	Path   string // PNG file each frame is written to. Empty uses [paths.Frame].
	Width  int    // Canvas width in pixels. Zero uses [DefaultWidth].
	Height int    // Canvas height in pixels. Zero uses [DefaultHeight].

	// Largest font size AddText accepts, in pixels. Zero allows four times
	// the canvas height.
	MaxFontSize int
}

// A display rendered to a grayscale PNG file.
//
// Frames are written atomically. A frame whose content digest matches the
// last one written is not written again.
type Image struct {
	path   string
	width   int
	height  int
	maxSize int
	font    *opentype.Font

	mu   sync.Mutex
	last digest.Digest
}

// Creates a new image device.
func NewImage(cfg ImageConfig) (*Image, error) {
	if cfg.Path == "" {
		cfg.Path = paths.Frame()
	}
	if cfg.Width == 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height == 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return nil, fmt.Errorf("%w: invalid canvas size %dx%d", errdefs.ErrInvalidArgument, cfg.Width, cfg.Height)
	}
	if cfg.MaxFontSize == 0 {
		cfg.MaxFontSize = maxFontSizeFactor * cfg.Height
	}
	if cfg.MaxFontSize < 0 {
		return nil, fmt.Errorf("%w: invalid maximum font size %d", errdefs.ErrInvalidArgument, cfg.MaxFontSize)
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurface, err)
	}

	return &Image{
		path:    cfg.Path,
		width:   cfg.Width,
		height:  cfg.Height,
		maxSize: cfg.MaxFontSize,
		font:    f,
	}, nil
}

// Returns the path frames are written to.
func (d *Image) Path() string {
	return d.path
}

// Returns the digest of the last frame written, or "" if none was.
func (d *Image) Digest() digest.Digest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Opens a new surface backed by a blank canvas.
func (d *Image) Open() (Surface, error) {
	canvas := image.NewGray(image.Rect(0, 0, d.width, d.height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	return &imageSurface{
		dev:    d,
		page:   newPage(),
		canvas: canvas,
		faces:  make(map[int]font.Face),
		full:   true,
	}, nil
}

// Encodes the canvas and writes it out unless it is identical to the last
// frame written.
func (d *Image) commit(canvas image.Image, partial bool) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return fmt.Errorf("%w: %w", ErrSurface, err)
	}
	dgst := digest.FromBytes(buf.Bytes())

	d.mu.Lock()
	defer d.mu.Unlock()

	if dgst == d.last {
		slog.Debug("frame unchanged", "digest", dgst.String())
		return nil
	}

	if err := writeFileAtomic(d.path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrSurface, err)
	}
	d.last = dgst

	slog.Debug("frame written", "path", d.path, "digest", dgst.String(), "partial", partial)
	return nil
}

// Writes data to a temporary file next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, ".frame-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, paths.DefaultFileMode); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

type imageSurface struct {
	dev    *Image
	page   *page
	canvas *image.Gray
	faces  map[int]font.Face // Font faces by size, created on first use.
	dirty  []image.Rectangle // Regions changed since the last commit.
	full   bool              // Whether the next commit must redraw everything.
	closed bool
}

func (s *imageSurface) AddText(text string, x, y, size int, ident string) error {
	if s.closed {
		return ErrClosed
	}

	e := Element{Ident: ident, Text: text, X: x, Y: y, Size: size}
	r, err := s.bounds(e)
	if err != nil {
		return err
	}
	if err := s.page.add(e); err != nil {
		return err
	}

	s.dirty = append(s.dirty, r)
	return nil
}

func (s *imageSurface) UpdateText(ident, newText string) error {
	if s.closed {
		return ErrClosed
	}

	old, err := s.page.update(ident, newText)
	if err != nil {
		return err
	}

	updated := old
	updated.Text = newText
	s.markDirty(old, updated)
	return nil
}

func (s *imageSurface) RemoveText(ident string) error {
	if s.closed {
		return ErrClosed
	}

	old, err := s.page.remove(ident)
	if err != nil {
		return err
	}

	s.markDirty(old)
	return nil
}

func (s *imageSurface) Clear() error {
	if s.closed {
		return ErrClosed
	}

	s.page.clear()
	s.dirty = nil
	s.full = true
	return nil
}

func (s *imageSurface) WriteAll(partial bool) error {
	if s.closed {
		return ErrClosed
	}

	if !partial || s.full {
		s.redraw(s.canvas.Bounds())
	} else {
		for _, r := range s.dirty {
			s.redraw(r)
		}
	}
	s.dirty = nil
	s.full = false

	return s.dev.commit(s.canvas, partial)
}

func (s *imageSurface) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	for size, face := range s.faces {
		face.Close()
		delete(s.faces, size)
	}
	return nil
}

// Blanks the region r of the canvas and draws every element overlapping it,
// clipped to r.
func (s *imageSurface) redraw(r image.Rectangle) {
	r = r.Intersect(s.canvas.Bounds())
	if r.Empty() {
		return
	}

	dst := s.canvas.SubImage(r).(*image.Gray)
	draw.Draw(dst, r, image.White, image.Point{}, draw.Src)

	for _, e := range s.page.elements() {
		b, err := s.bounds(e)
		if err != nil || !b.Overlaps(r) {
			continue
		}
		s.draw(dst, e)
	}
}

func (s *imageSurface) draw(dst draw.Image, e Element) {
	face, err := s.face(e.Size)
	if err != nil {
		return
	}

	d := font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(e.X), Y: fixed.I(e.Y) + face.Metrics().Ascent},
	}
	d.DrawString(e.Text)
}

// Records the current bounds of each element as needing a redraw.
func (s *imageSurface) markDirty(elems ...Element) {
	for _, e := range elems {
		if r, err := s.bounds(e); err == nil {
			s.dirty = append(s.dirty, r)
		}
	}
}

// Returns the pixel bounds covered by an element: its line box, widened by
// any glyph ink that falls outside it.
func (s *imageSurface) bounds(e Element) (image.Rectangle, error) {
	face, err := s.face(e.Size)
	if err != nil {
		return image.Rectangle{}, err
	}

	m := face.Metrics()
	dot := fixed.Point26_6{X: fixed.I(e.X), Y: fixed.I(e.Y) + m.Ascent}
	ink, advance := font.BoundString(face, e.Text)

	box := image.Rect(e.X, e.Y, (dot.X + advance).Ceil(), (dot.Y + m.Descent).Ceil())
	glyphs := image.Rect(
		(dot.X + ink.Min.X).Floor(),
		(dot.Y + ink.Min.Y).Floor(),
		(dot.X + ink.Max.X).Ceil(),
		(dot.Y + ink.Max.Y).Ceil(),
	)
	return box.Union(glyphs), nil
}

func (s *imageSurface) face(size int) (font.Face, error) {
	if f, ok := s.faces[size]; ok {
		return f, nil
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: invalid font size %d", errdefs.ErrInvalidArgument, size)
	}
	if size > s.dev.maxSize {
		return nil, fmt.Errorf("%w: font size %d exceeds the maximum of %d", errdefs.ErrInvalidArgument, size, s.dev.maxSize)
	}

	f, err := opentype.NewFace(s.dev.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurface, err)
	}

	s.faces[size] = f
	return f, nil
}

package surface

// Opens rendering surfaces on a display.
type Device interface {

	// Opens a new, empty surface. The caller owns it until [Surface.Close].
	Open() (Surface, error)
}

// A page of text elements pending on a display.
//
// Surfaces are not safe for concurrent use.
type Surface interface {

	// Adds a text element with its top-left corner at (x, y).
	AddText(text string, x, y, size int, ident string) error

	// Replaces the text of a live element.
	UpdateText(ident, newText string) error

	// Removes a live element.
	RemoveText(ident string) error

	// Removes every element. Nothing is committed.
	Clear() error

	// Commits the page to the display. A partial update redraws only what
	// changed since the previous commit.
	WriteAll(partial bool) error

	// Releases the surface. Further calls fail.
	Close() error
}

// A text element on a surface.
type Element struct {
	Ident string
	Text  string
	X     int
	Y     int
	Size  int
}

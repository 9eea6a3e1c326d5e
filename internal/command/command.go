package command

// Names of the commands, as they appear on the wire.
const (
	NameAddText      = "AddText"
	NameUpdateText   = "UpdateText"
	NameRemoveText   = "RemoveText"
	NameClear        = "Clear"
	NameWriteAll     = "WriteAll"
	NameSync         = "Sync"
	NameQuitWhenDone = "QuitWhenDone"
)

// A single decoded command.
//
// The set of implementations is closed: only the types in this package
// satisfy it.
type Command interface {

	// Returns the wire name of the command.
	Name() string

	command()
}

// Places a new text element on the surface.
//
// X and Y locate the top-left corner of the text in pixels; Size is the font
// size in pixels. Ident must not name a live element.
type AddText struct {
	Text  string
	X     int
	Y     int
	Size  int
	Ident string
}

// Replaces the text of an existing element.
type UpdateText struct {
	Ident   string
	NewText string
}

// Removes an existing element.
type RemoveText struct {
	Ident string
}

// Removes every element from the surface.
type Clear struct{}

// Commits pending changes to the physical display.
type WriteAll struct {
	PartialUpdate bool
}

// Asks the server to acknowledge once all earlier commands are applied.
type Sync struct{}

// Asks the server to stop after the current connection ends.
type QuitWhenDone struct{}

func (AddText) Name() string      { return NameAddText }
func (UpdateText) Name() string   { return NameUpdateText }
func (RemoveText) Name() string   { return NameRemoveText }
func (Clear) Name() string        { return NameClear }
func (WriteAll) Name() string     { return NameWriteAll }
func (Sync) Name() string         { return NameSync }
func (QuitWhenDone) Name() string { return NameQuitWhenDone }

func (AddText) command()      {}
func (UpdateText) command()   {}
func (RemoveText) command()   {}
func (Clear) command()        {}
func (WriteAll) command()     {}
func (Sync) command()         {}
func (QuitWhenDone) command() {}

package command

import (
	"encoding/json"
	"fmt"
)

// Encodes a command as a single protocol line, without the trailing newline.
//
// The result is checked with [Decode], so a command the server would reject
// (for example text containing a newline) fails here instead of on the wire.
func Encode(cmd Command) ([]byte, error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: nil command", ErrShape)
	}

	b, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}

	if _, err := Decode(b); err != nil {
		return nil, err
	}
	return b, nil
}

func tagged(name string, payload any) ([]byte, error) {
	return json.Marshal(map[string]any{name: payload})
}

func (c AddText) MarshalJSON() ([]byte, error) {
	return tagged(NameAddText, []any{c.Text, [2]int{c.X, c.Y}, c.Size, c.Ident})
}

func (c UpdateText) MarshalJSON() ([]byte, error) {
	return tagged(NameUpdateText, [2]string{c.Ident, c.NewText})
}

func (c RemoveText) MarshalJSON() ([]byte, error) {
	return tagged(NameRemoveText, c.Ident)
}

func (c WriteAll) MarshalJSON() ([]byte, error) {
	return tagged(NameWriteAll, c.PartialUpdate)
}

func (Clear) MarshalJSON() ([]byte, error)        { return json.Marshal(NameClear) }
func (Sync) MarshalJSON() ([]byte, error)         { return json.Marshal(NameSync) }
func (QuitWhenDone) MarshalJSON() ([]byte, error) { return json.Marshal(NameQuitWhenDone) }

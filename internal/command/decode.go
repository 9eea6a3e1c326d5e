package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Decodes one protocol line into a [Command].
//
// A single trailing "\n" (optionally preceded by "\r") is ignored, as is
// whitespace around the JSON value. The line must hold exactly one JSON value:
// a bare string naming a command without fields, or an object with exactly one
// key whose value carries the fields. All failures wrap [ErrDecode]; the more
// specific [ErrUnknownVariant], [ErrShape] and [ErrField] are wrapped as well
// where they apply.
func Decode(line []byte) (Command, error) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	if !utf8.Valid(line) {
		return nil, fmt.Errorf("%w: line is not valid UTF-8", ErrDecode)
	}

	data := bytes.TrimSpace(line)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrDecode)
	}

	if err := json.Unmarshal(data, new(json.RawMessage)); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %w", ErrDecode, err)
	}

	switch data[0] {
	case '"':
		return decodeBare(data)
	case '{':
		return decodeTagged(data)
	default:
		return nil, fmt.Errorf("%w: %w: command must be a string or an object", ErrDecode, ErrShape)
	}
}

// Decodes a command that carries no fields, encoded as its name.
func decodeBare(data []byte) (Command, error) {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	switch name {
	case NameClear:
		return Clear{}, nil
	case NameSync:
		return Sync{}, nil
	case NameQuitWhenDone:
		return QuitWhenDone{}, nil
	case NameAddText, NameUpdateText, NameRemoveText, NameWriteAll:
		return nil, fmt.Errorf("%w: %w: %s requires a payload", ErrDecode, ErrShape, name)
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrDecode, ErrUnknownVariant, name)
	}
}

// Decodes a command encoded as a single-key object. The key names the command
// and the value holds its payload.
func decodeTagged(data []byte) (Command, error) {
	name, payload, err := splitTagged(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	var cmd Command
	switch name {
	case NameAddText:
		cmd, err = decodeAddText(payload)
	case NameUpdateText:
		cmd, err = decodeUpdateText(payload)
	case NameRemoveText:
		cmd, err = decodeRemoveText(payload)
	case NameWriteAll:
		cmd, err = decodeWriteAll(payload)
	case NameClear, NameSync, NameQuitWhenDone:
		err = fmt.Errorf("%w: %s takes no payload", ErrShape, name)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return cmd, nil
}

// Returns the only key of a JSON object and its raw value. Objects with no
// keys or with more than one key are rejected, including duplicated keys.
func splitTagged(data []byte) (string, json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if _, err := dec.Token(); err != nil {
		return "", nil, err
	}
	if !dec.More() {
		return "", nil, fmt.Errorf("%w: empty object", ErrShape)
	}

	tok, err := dec.Token()
	if err != nil {
		return "", nil, err
	}
	name, _ := tok.(string)

	var payload json.RawMessage
	if err := dec.Decode(&payload); err != nil {
		return "", nil, err
	}

	if dec.More() {
		return "", nil, fmt.Errorf("%w: object must have exactly one key", ErrShape)
	}
	return name, payload, nil
}

func decodeAddText(payload json.RawMessage) (Command, error) {
	f, err := fields(NameAddText, payload, 4)
	if err != nil {
		return nil, err
	}

	var c AddText
	if c.Text, err = stringField("text", f[0]); err != nil {
		return nil, err
	}

	pos, err := fields("pos", f[1], 2)
	if err != nil {
		return nil, err
	}
	if c.X, err = intField("x", pos[0]); err != nil {
		return nil, err
	}
	if c.Y, err = intField("y", pos[1]); err != nil {
		return nil, err
	}

	if c.Size, err = intField("size", f[2]); err != nil {
		return nil, err
	}
	if c.Size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrField, c.Size)
	}

	if c.Ident, err = stringField("ident", f[3]); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeUpdateText(payload json.RawMessage) (Command, error) {
	f, err := fields(NameUpdateText, payload, 2)
	if err != nil {
		return nil, err
	}

	var c UpdateText
	if c.Ident, err = stringField("ident", f[0]); err != nil {
		return nil, err
	}
	if c.NewText, err = stringField("new_text", f[1]); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeRemoveText(payload json.RawMessage) (Command, error) {
	if err := scalar(NameRemoveText, payload); err != nil {
		return nil, err
	}

	ident, err := stringField("ident", payload)
	if err != nil {
		return nil, err
	}
	return RemoveText{Ident: ident}, nil
}

func decodeWriteAll(payload json.RawMessage) (Command, error) {
	if err := scalar(NameWriteAll, payload); err != nil {
		return nil, err
	}

	partial, err := boolField("partial_update", payload)
	if err != nil {
		return nil, err
	}
	return WriteAll{PartialUpdate: partial}, nil
}

// Returns the first significant byte of a raw JSON value, which identifies
// its kind.
func kind(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

// Splits an array payload into exactly n raw elements.
func fields(name string, raw json.RawMessage, n int) ([]json.RawMessage, error) {
	if kind(raw) != '[' {
		return nil, fmt.Errorf("%w: %s must be an array of %d values", ErrShape, name, n)
	}

	var f []json.RawMessage
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShape, name, err)
	}
	if len(f) != n {
		return nil, fmt.Errorf("%w: %s takes %d values, got %d", ErrShape, name, n, len(f))
	}
	return f, nil
}

// Rejects container payloads for commands that carry a single scalar.
func scalar(name string, raw json.RawMessage) error {
	switch kind(raw) {
	case '[', '{':
		return fmt.Errorf("%w: %s takes a single value, not a container", ErrShape, name)
	}
	return nil
}

// Decodes a JSON string. Strings holding a newline cannot be framed on the
// wire and are rejected.
func stringField(field string, raw json.RawMessage) (string, error) {
	if kind(raw) != '"' {
		return "", fmt.Errorf("%w: %s must be a string", ErrField, field)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrField, field, err)
	}
	if strings.ContainsRune(s, '\n') {
		return "", fmt.Errorf("%w: %s contains a newline", ErrField, field)
	}
	return s, nil
}

// Decodes a JSON number holding an integer.
func intField(field string, raw json.RawMessage) (int, error) {
	if k := kind(raw); k != '-' && (k < '0' || k > '9') {
		return 0, fmt.Errorf("%w: %s must be a number", ErrField, field)
	}

	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrField, field)
	}
	return n, nil
}

// Decodes a JSON boolean.
func boolField(field string, raw json.RawMessage) (bool, error) {
	if k := kind(raw); k != 't' && k != 'f' {
		return false, fmt.Errorf("%w: %s must be a boolean", ErrField, field)
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrField, field, err)
	}
	return b, nil
}

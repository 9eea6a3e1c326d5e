// Package command defines the commands a client sends to the daemon and their
// wire encoding.
//
// Every command travels as one JSON value on its own line. The shape of the
// value depends on how many fields the command carries:
//
//	"Clear"                                  no fields: a bare string
//	{"RemoveText":"id1"}                     one field: the scalar value
//	{"AddText":["hi",[1,2],12,"id1"]}        several fields: an array in order
//
// [Decode] determines which shape it has been given before looking at the
// command name, and then applies a strict decoder for that one command.
// Anything that does not match exactly (another shape, an unknown name, a
// missing or extra field, a field of the wrong type) fails with an error
// wrapping [ErrDecode]. [Encode] produces the same shapes.
//
// Example usage:
//
//	cmd, err := command.Decode(line)
//	if err != nil {
//	    return err
//	}
//
//	switch c := cmd.(type) {
//	case command.AddText:
//	    fmt.Println(c.Text, c.X, c.Y)
//	}
package command

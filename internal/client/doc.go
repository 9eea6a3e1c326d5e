// Package client talks to a running inkd daemon.
//
// A [Client] wraps one TCP connection. Commands are encoded one per line and
// written in order; [Client.Send] can append a "Sync" and wait for the
// daemon's empty-line reply, which arrives only after every earlier command
// has been applied.
//
// [Dial] retries the connection a configurable number of times, so a client
// started alongside the daemon can wait for it to come up.
//
// Example usage:
//
//	c, err := client.Dial(ctx, "localhost:6029")
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	err = c.Send([]command.Command{
//	    command.Clear{},
//	    command.AddText{Text: "hello", X: 10, Y: 10, Size: 24, Ident: "greeting"},
//	    command.WriteAll{},
//	}, true)
package client

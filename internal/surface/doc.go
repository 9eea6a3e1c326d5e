// Package surface implements the rendering backends the daemon draws on.
//
// A [Device] stands for a physical display. Each connection opens its own
// [Surface] on the device: a page of text elements keyed by caller-chosen
// idents, which accumulates changes until [Surface.WriteAll] commits them to
// the device. Idents must be unique among live elements; [Surface.Clear]
// drops every element and so invalidates every ident.
//
// Failures are classified with containerd's errdefs: an unknown ident is
// [errdefs.ErrNotFound], a duplicate ident is [errdefs.ErrAlreadyExists] and
// any operation on a closed surface is [errdefs.ErrUnavailable].
//
// Two devices are provided. [Memory] keeps committed frames in memory and is
// what the tests use. [Image] rasterises each frame with the Go Regular font
// and writes it to a PNG file, redrawing only the regions that changed when a
// partial update is requested.
//
// Example usage:
//
//	dev, err := surface.NewImage(surface.ImageConfig{Path: "/tmp/frame.png"})
//	if err != nil {
//	    return err
//	}
//
//	s, err := dev.Open()
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	s.AddText("hello", 10, 0, 16, "heading")
//	s.WriteAll(false)
package surface

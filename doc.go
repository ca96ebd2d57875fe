// Package anim composites, plays and re-encodes frame-based animated images.
//
// # Overview
//
// A container decoder (see package gifcodec) turns source bytes into raw
// patches: palette-indexed sub-rectangles with a disposal code and a delay.
// Compose replays the disposal state machine over them and produces a
// Store of self-contained RGBA frames, so any frame can be rendered without
// knowing the others. A Player walks the store in real time, RenderFrame
// copies a frame into a caller-owned Surface and runs an optional
// Transform on it, and Export streams transformed frames with their
// original delays into an Encoder.
//
// # Quick Start
//
//	a := anim.New(gifcodec.NewDecoder())
//	defer a.Close()
//
//	if err := a.Load(ctx, anim.FileSource("in.gif")); err != nil {
//	    return err
//	}
//	a.Player().Play()
//
//	view := anim.NewPixmap(0, 0)
//	a.Render(view, nil) // on every redraw
//
//	data, err := a.Export(ctx, gifcodec.NewEncoder(), invert)
//
// # Disposal
//
// Before a patch is drawn the previous patch's disposal is applied:
// "unspecified" and "do not dispose" leave the canvas, "restore to
// background" clears the previous patch's rectangle to transparent, and
// "restore to previous" reverts the canvas to what it was before the
// previous patch was drawn. Pixels equal to a patch's transparent index are
// never painted.
//
// # Timing
//
// Frame delays are durations; a source delay of zero becomes DefaultDelay.
// The player keeps leftover time as carry-over between ticks and advances
// through as many frames as the elapsed time covers, so playback does not
// drift and resumes correctly after a long stall.
//
// # Concurrency
//
// Stores are immutable and may be shared. Player is safe for concurrent
// use. Surfaces are not: live rendering and export each use their own.
package anim

package anim

import (
	"context"
	"errors"
)

// Animation ties the engine together for one on-screen asset: it loads
// sources through a Decoder, composes them, plays them with a Player and
// exports them.
//
// A failed Load leaves the previous store and playback untouched.
type Animation struct {
	decoder Decoder
	opts    []Option
	player  *Player
}

// New creates an Animation. opts apply to both compositing and playback.
func New(dec Decoder, opts ...Option) *Animation {
	return &Animation{
		decoder: dec,
		opts:    opts,
		player:  NewPlayer(opts...),
	}
}

// Load reads, decodes and composes src, then installs the result, resetting
// playback. Every failure is a *DecodeError and keeps the current store.
func (a *Animation) Load(ctx context.Context, src Source) error {
	s, err := a.compose(ctx, src)
	if err != nil {
		Logger().Warn("anim: load failed", "err", err)
		return err
	}
	a.player.Load(s)
	Logger().Info("anim: loaded",
		"store", s.ID(), "frames", s.Len(), "width", s.Width(), "height", s.Height(),
		"duration", s.Duration())
	return nil
}

func (a *Animation) compose(ctx context.Context, src Source) (*Store, error) {
	if a.decoder == nil {
		return nil, decodeErr("no decoder", -1, nil)
	}
	if src == nil {
		return nil, decodeErr("no source", -1, nil)
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, decodeErr("open source", -1, err)
	}
	defer func() {
		_ = rc.Close()
	}()

	d, err := a.decoder.Decode(ctx, rc)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, decodeErr("decoder failed", -1, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, decodeErr("cancelled", -1, err)
	}
	return Compose(d, a.opts...)
}

// Store returns the current store, nil before the first successful load.
func (a *Animation) Store() *Store { return a.player.Store() }

// Player returns the playback scheduler.
func (a *Animation) Player() *Player { return a.player }

// Render draws the current frame into target.
func (a *Animation) Render(target Surface, transform Transform) bool {
	return a.player.Render(target, transform)
}

// RenderFrame draws frame index of the current store into target.
func (a *Animation) RenderFrame(target Surface, index int, transform Transform) bool {
	return RenderFrame(a.player.Store(), target, index, transform)
}

// Export re-encodes the current store. The store is captured when Export
// starts, so a concurrent Load does not affect the result.
func (a *Animation) Export(ctx context.Context, enc Encoder, transform Transform, opts ...ExportOption) ([]byte, error) {
	return Export(ctx, a.player.Store(), enc, transform, opts...)
}

// ExportAsync is the asynchronous form of Export.
func (a *Animation) ExportAsync(ctx context.Context, enc Encoder, transform Transform, opts ...ExportOption) <-chan ExportResult {
	return ExportAsync(ctx, a.player.Store(), enc, transform, opts...)
}

// Close stops playback and waits for the playback goroutine to exit.
func (a *Animation) Close() {
	a.player.Close()
}

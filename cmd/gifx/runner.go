package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogpu/anim"
	"github.com/gogpu/anim/effect"
	"github.com/gogpu/anim/gifcodec"
)

// runner owns the loaded animation and performs load, preview and export.
type runner struct {
	cfg        config
	configPath string
	pngDir     string
	play       time.Duration
	logger     *slog.Logger

	anim   *anim.Animation
	frames chan int
}

func newRunner(cfg config, configPath, pngDir string, play time.Duration, logger *slog.Logger) *runner {
	anim.SetLogger(logger)
	r := &runner{
		cfg:        cfg,
		configPath: configPath,
		pngDir:     pngDir,
		play:       play,
		logger:     logger,
		frames:     make(chan int, 1),
	}
	opts := append(cfg.animOptions(), anim.WithFrameCallback(r.notifyFrame))
	r.anim = anim.New(gifcodec.NewDecoder(), opts...)
	return r
}

func (r *runner) close() { r.anim.Close() }

// notifyFrame forwards frame changes to the preview loop, dropping them
// when it lags behind.
func (r *runner) notifyFrame(i int) {
	select {
	case r.frames <- i:
	default:
	}
}

func (r *runner) source() anim.Source {
	in := r.cfg.Input
	if strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://") {
		return anim.URLSource{URL: in}
	}
	return anim.FileSource(in)
}

// run loads the input and exports it. A failed load keeps the store from
// the previous run.
func (r *runner) run(ctx context.Context) error {
	if err := r.anim.Load(ctx, r.source()); err != nil {
		return err
	}
	chain, err := effect.New(r.cfg.Effect)
	if err != nil {
		return err
	}
	if r.play > 0 {
		r.preview(ctx, chain)
	}
	return r.export(ctx, chain)
}

// preview plays the animation for r.play, rendering each new frame through
// the effect chain the way a live view would.
func (r *runner) preview(ctx context.Context, chain *effect.Chain) {
	p := r.anim.Player()
	v := anim.NewPreview(p, chain.Transform(), 0)
	target := anim.NewPixmap(1, 1)

	p.Play()
	defer p.Reset()

	timer := time.NewTimer(r.play)
	defer timer.Stop()
	v.Render(target)
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			st := p.Stats()
			cs := v.CacheStats()
			r.logger.Info("gifx: preview done",
				"ticks", st.Ticks, "frames", st.FramesAdvanced, "wraps", st.Wraps, "maxSkip", st.MaxSkip,
				"cacheHits", cs.Hits, "cacheMisses", cs.Misses)
			return
		case i := <-r.frames:
			if !v.Render(target) {
				r.logger.Warn("gifx: preview render failed", "frame", i)
			}
		}
	}
}

func (r *runner) export(ctx context.Context, chain *effect.Chain) error {
	s := r.anim.Store()
	if s == nil {
		return errors.New("gifx: nothing loaded")
	}

	loop := s.LoopCount()
	if r.cfg.LoopCount != nil {
		loop = *r.cfg.LoopCount
	}
	enc := gifcodec.NewEncoder(
		gifcodec.WithLoopCount(loop),
		gifcodec.WithAlphaThreshold(r.cfg.AlphaThreshold),
	)
	data, err := anim.Export(ctx, s, enc, chain.Sequence(s.Len()),
		anim.WithProgress(func(done, total int) {
			r.logger.Debug("gifx: exported frame", "done", done, "total", total)
		}))
	if err != nil {
		return err
	}

	if err := os.WriteFile(r.cfg.Output, data, 0o644); err != nil { //nolint:gosec // output is meant to be readable
		return fmt.Errorf("gifx: write output: %w", err)
	}
	r.logger.Info("gifx: wrote", "path", r.cfg.Output, "frames", s.Len(), "bytes", len(data))

	if r.pngDir != "" {
		return r.writeFrames(ctx, data)
	}
	return nil
}

// writeFrames decodes the exported GIF again and saves every composited
// frame as PNG, so the files show exactly what a viewer will show.
func (r *runner) writeFrames(ctx context.Context, data []byte) error {
	if err := os.MkdirAll(r.pngDir, 0o755); err != nil { //nolint:gosec // output directory
		return fmt.Errorf("gifx: %w", err)
	}
	d, err := gifcodec.NewDecoder().Decode(ctx, bytes.NewReader(data))
	if err != nil {
		return err
	}
	s, err := anim.Compose(d)
	if err != nil {
		return err
	}

	pm := anim.NewPixmap(s.Width(), s.Height())
	for i := range s.Len() {
		if !anim.RenderFrame(s, pm, i, nil) {
			return fmt.Errorf("gifx: render frame %d", i)
		}
		path := filepath.Join(r.pngDir, fmt.Sprintf("frame_%04d.png", i))
		if err := pm.SavePNG(path); err != nil {
			return fmt.Errorf("gifx: %w", err)
		}
	}
	r.logger.Info("gifx: wrote frames", "dir", r.pngDir, "count", s.Len())
	return nil
}

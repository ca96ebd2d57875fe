package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long the watcher waits for a burst of writes to end.
const settle = 200 * time.Millisecond

// watch exports again whenever the input file or the config file changes.
// Directories are watched rather than files because editors usually save
// by renaming a temporary file over the original.
func (r *runner) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("gifx: watcher: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()

	targets := map[string]bool{}
	if !strings.Contains(r.cfg.Input, "://") {
		targets[abs(r.cfg.Input)] = true
	}
	if r.configPath != "" {
		targets[abs(r.configPath)] = true
	}
	if len(targets) == 0 {
		return fmt.Errorf("gifx: nothing to watch for %s", r.cfg.Input)
	}
	dirs := map[string]bool{}
	for t := range targets {
		dirs[filepath.Dir(t)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("gifx: watch %s: %w", d, err)
		}
	}
	r.logger.Info("gifx: watching", "input", r.cfg.Input, "config", r.configPath)

	var (
		timer         = time.NewTimer(settle)
		configChanged bool
	)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("gifx: watcher error", "err", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := abs(ev.Name)
			if !targets[name] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if r.configPath != "" && name == abs(r.configPath) {
				configChanged = true
			}
			timer.Reset(settle)
		case <-timer.C:
			if configChanged {
				configChanged = false
				r.reloadConfig()
			}
			if err := r.run(ctx); err != nil {
				r.logger.Error("gifx: export failed, keeping previous output", "err", err)
			}
		}
	}
}

// reloadConfig re-reads the config file. Input, output and the delay
// options stay as they were at startup.
func (r *runner) reloadConfig() {
	cfg, err := loadConfig(r.configPath)
	if err != nil {
		r.logger.Error("gifx: config reload failed, keeping previous", "err", err)
		return
	}
	cfg.Input, cfg.Output = r.cfg.Input, r.cfg.Output
	r.cfg = cfg
	r.logger.Info("gifx: config reloaded", "path", r.configPath)
}

func abs(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}
	return path
}

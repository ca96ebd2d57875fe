// Command gifx loads an animated GIF, runs every frame through an effect
// chain and writes the result as a new GIF.
//
// Usage:
//
//	gifx -in party.gif -out glitched.gif -config effects.yaml
//	gifx -in https://example.com/a.gif -png frames/ -play 3s
//	gifx -in party.gif -config effects.yaml -watch
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		input      = flag.String("in", "", "input GIF file or http(s) URL")
		output     = flag.String("out", "", "output GIF file (default out.gif)")
		pngDir     = flag.String("png", "", "also write every exported frame as PNG into this directory")
		play       = flag.Duration("play", 0, "play the animation for this long before exporting")
		watch      = flag.Bool("watch", false, "export again whenever the input or config file changes")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *input != "" {
		cfg.Input = *input
	}
	if *output != "" {
		cfg.Output = *output
	}
	if cfg.Input == "" {
		log.Fatal("gifx: no input; use -in or set input in the config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := newRunner(cfg, *configPath, *pngDir, *play, logger)
	defer r.close()

	if err := r.run(ctx); err != nil {
		if !*watch {
			log.Fatalf("Failed: %v", err)
		}
		logger.Error("gifx: initial export failed", "err", err)
	}
	if *watch {
		if err := r.watch(ctx); err != nil {
			log.Fatalf("Watch failed: %v", err)
		}
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jolfss/stagebuilder/internal/config"
)

func main() {
	var (
		cfgPath     string
		outPath     string
		previewPath string
		assetsDir   string
	)
	flag.StringVar(&cfgPath, "config", "", "path to stage configuration file (JSON or YAML)")
	flag.StringVar(&outPath, "out", "", "stage output path, overrides output.stagePath")
	flag.StringVar(&previewPath, "preview", "", "PNG preview path, overrides output.previewPath")
	flag.StringVar(&assetsDir, "assets", "", "directory asset paths are resolved against")
	flag.Parse()

	if wrote, err := writeConfigFromEnv(cfgPath); err != nil {
		log.Fatalf("sync config from environment: %v", err)
	} else if wrote {
		log.Printf("wrote configuration from environment to %s", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if outPath != "" {
		cfg.Output.StagePath = outPath
	}
	if previewPath != "" {
		cfg.Output.PreviewPath = previewPath
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := run(ctx, cfg, assetsDir); err != nil {
		log.Fatalf("build stage: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			log.Printf("interrupted, abandoning build")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/alex-llm/attAck-mcp-server/internal/attackcore"
)

func main() {
	var (
		bundlePath = flag.String("bundle", envOr("ATTACK_BUNDLE", "enterprise-attack.json"), "path to the ATT&CK STIX bundle")
		outPath    = flag.String("out", envOr("ATTACK_SNAPSHOT", "attack-snapshot.db"), "where to write the bolt snapshot")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	start := time.Now()
	logger.Info("parsing bundle", "bundle", *bundlePath)
	ds, err := attackcore.LoadBundleFile(*bundlePath)
	if err != nil {
		logger.Error("bundle parse failed", "error", err)
		os.Exit(1)
	}

	digest, err := attackcore.BundleDigest(*bundlePath)
	if err != nil {
		logger.Error("bundle digest failed", "error", err)
		os.Exit(1)
	}

	if err := attackcore.WriteSnapshot(*outPath, ds, digest); err != nil {
		logger.Error("snapshot write failed", "error", err)
		os.Exit(1)
	}

	logger.Info("snapshot written",
		"out", *outPath,
		"techniques", len(ds.Techniques),
		"tactics", len(ds.Tactics),
		"duration", time.Since(start))
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

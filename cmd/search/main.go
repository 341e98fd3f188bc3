package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/alex-llm/attAck-mcp-server/internal/attackcore"
)

// One-shot lookup and name search against the local bundle, without going
// through an MCP client. Useful for eyeballing what the server will return.
func main() {
	var (
		bundlePath   = flag.String("bundle", envOr("ATTACK_BUNDLE", "enterprise-attack.json"), "path to the ATT&CK STIX bundle")
		snapshotPath = flag.String("snapshot", os.Getenv("ATTACK_SNAPSHOT"), "optional bolt snapshot")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: search [-bundle path] <technique ID or name fragment>")
		os.Exit(2)
	}
	queryStr := flag.Arg(0)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	loader := attackcore.NewLoader(attackcore.LoaderOptions{
		BundlePath:   *bundlePath,
		SnapshotPath: *snapshotPath,
		Logger:       logger,
	})
	engine := attackcore.NewEngine(loader, logger)

	ctx := context.Background()
	outcome, err := engine.QueryTechnique(ctx, queryStr, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
		os.Exit(1)
	}

	// Treat anything that is not a known ID as a name fragment.
	if outcome.NotFound != nil {
		outcome, err = engine.QueryTechnique(ctx, "", queryStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
			os.Exit(1)
		}
	}

	data, err := json.MarshalIndent(outcome.Body(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode results: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

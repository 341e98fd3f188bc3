package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/alex-llm/attAck-mcp-server/internal/attackcore"
	"github.com/alex-llm/attAck-mcp-server/internal/mcpserver"
)

func main() {
	var (
		bundlePath   = flag.String("bundle", envOr("ATTACK_BUNDLE", "enterprise-attack.json"), "path to the ATT&CK STIX bundle")
		snapshotPath = flag.String("snapshot", os.Getenv("ATTACK_SNAPSHOT"), "optional bolt snapshot written by cmd/snapshot")
		transport    = flag.String("transport", envOr("MCP_TRANSPORT", "stdio"), "MCP transport: stdio or sse")
		listenAddr   = flag.String("listen", envOr("LISTEN_ADDR", ":8001"), "listen address for the sse transport")
		kafkaBroker  = flag.String("kafka-broker", os.Getenv("KAFKA_BROKER"), "kafka broker for audit events (disabled when empty)")
		kafkaTopic   = flag.String("kafka-topic", envOr("KAFKA_TOPIC", "attack-query-audit"), "kafka topic for audit events")
	)
	flag.Parse()

	// stdout belongs to the stdio transport, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	loader := attackcore.NewLoader(attackcore.LoaderOptions{
		BundlePath:   *bundlePath,
		SnapshotPath: *snapshotPath,
		Logger:       logger,
	})
	engine := attackcore.NewEngine(loader, logger)

	audit := mcpserver.NewAuditPublisher(*kafkaBroker, *kafkaTopic, logger)
	if audit != nil {
		logger.Info("audit events enabled", "broker", *kafkaBroker, "topic", *kafkaTopic)
		defer audit.Close()
	}

	srv := mcpserver.New(engine, mcpserver.Config{Logger: logger, Audit: audit})

	switch *transport {
	case "stdio":
		if err := srv.ServeStdio(); err != nil {
			logger.Error("stdio server stopped", "error", err)
			os.Exit(1)
		}
	case "sse":
		logger.Info("serving MCP over SSE", "listen", *listenAddr)
		if err := http.ListenAndServe(*listenAddr, srv.SSEHandler()); err != nil {
			logger.Error("sse server stopped", "error", err)
			os.Exit(1)
		}
	default:
		logger.Error("unknown transport", "transport", *transport)
		os.Exit(2)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

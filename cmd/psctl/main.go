// Package main is psctl, a command-line client for the platform API. It
// wires configuration, logging, tracing and metrics around package client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0"
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

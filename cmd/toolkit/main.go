package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eringen/toolkit"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: .env: %v\n", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe()
	case "fetch":
		err = runFetch(os.Args[2:])
	case "version":
		fmt.Printf("toolkit %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe() error {
	cfg, err := toolkit.ConfigFromEnv()
	if err != nil {
		return err
	}
	app, err := toolkit.New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- app.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func printUsage() {
	fmt.Println(`toolkit - a resource catalog served from a published spreadsheet

Usage:
  toolkit <command> [arguments]

Commands:
  serve                   Start the web server (configured from the environment and .env)
  fetch [-tree] [-json]   Download the sheet once and print a summary, the folder tree or the items
  version                 Print the toolkit version
  help                    Show this help message

Examples:
  toolkit serve
  toolkit fetch -tree
  SHEET_CSV_URL=https://example.com/sheet.csv toolkit fetch -json`)
}

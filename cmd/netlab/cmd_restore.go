package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danmudi/netlab/internal/backup"
)

func runRestore(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	input := fs.String("input", "", "backup archive to restore (required)")
	dbPath := fs.String("db", "", "database target (default: database.path from the config)")
	configFile := fs.String("config", "", "config file target; the archived config is skipped when empty")
	force := fs.Bool("force", false, "overwrite existing files")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *input == "" {
		fmt.Fprintln(os.Stderr, "error: -input is required")
		fs.Usage()
		os.Exit(1)
	}
	if *dbPath == "" {
		*dbPath = databasePath("")
	}

	ctx := context.Background()
	restored, err := backup.Restore(ctx, *input, *dbPath, *configFile, *force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "restore failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Restored database: %s\n", restored.Database)
	if restored.Config != "" {
		fmt.Printf("Restored config: %s\n", restored.Config)
	}
}

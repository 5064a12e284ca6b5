package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danmudi/netlab/internal/backup"
	"github.com/danmudi/netlab/internal/config"
)

func runBackup(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	output := fs.String("output", "", "output file path (default: netlab-backup-{timestamp}.tar.gz)")
	dbPath := fs.String("db", "", "database file (default: database.path from the config)")
	configFile := fs.String("config", "", "path to config file to include in backup")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *dbPath == "" {
		*dbPath = databasePath(*configFile)
	}
	if *output == "" {
		*output = fmt.Sprintf("netlab-backup-%s.tar.gz", time.Now().Format("20060102-150405"))
	}

	ctx := context.Background()
	if err := backup.Backup(ctx, *dbPath, *configFile, *output); err != nil {
		fmt.Fprintf(os.Stderr, "backup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Backup created: %s\n", *output)
}

// databasePath resolves database.path the same way the server does.
func databasePath(configFile string) string {
	v, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return v.GetString("database.path")
}

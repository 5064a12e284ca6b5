// Package backup provides tar.gz-based backup and restore for netlab data.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/danmudi/netlab/internal/store"
)

// Archive entry names. Restore maps them back onto the target paths.
const (
	DatabaseEntry = "netlab.db"
	ConfigEntry   = "netlab.yaml"
)

// ErrTargetExists is returned by Restore when a target file exists and
// force is not set.
var ErrTargetExists = errors.New("restore target exists")

// Backup creates a tar.gz archive containing the SQLite database and an
// optional config file. It performs a WAL checkpoint before copying the
// database to ensure consistency.
func Backup(ctx context.Context, dbPath, configPath, outputPath string) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("database file not found: %w", err)
	}

	if err := checkpointWAL(ctx, dbPath); err != nil {
		return fmt.Errorf("WAL checkpoint failed: %w", err)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer outFile.Close()

	gw := gzip.NewWriter(outFile)
	tw := tar.NewWriter(gw)

	if err := addFileToTar(tw, dbPath, DatabaseEntry); err != nil {
		return fmt.Errorf("adding database to archive: %w", err)
	}

	// A missing config file is skipped.
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := addFileToTar(tw, configPath, ConfigEntry); err != nil {
				return fmt.Errorf("adding config to archive: %w", err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("closing gzip stream: %w", err)
	}
	return outFile.Close()
}

// Restored lists the files Restore wrote.
type Restored struct {
	Database string
	Config   string
}

// Restore unpacks an archive written by Backup. The database goes to
// dbPath; the config goes to configPath when both the entry and the path
// exist. Existing files are only replaced when force is set. Each file is
// written beside its target and renamed into place.
func Restore(_ context.Context, archivePath, dbPath, configPath string, force bool) (Restored, error) {
	var out Restored

	targets := map[string]string{DatabaseEntry: dbPath}
	if configPath != "" {
		targets[ConfigEntry] = configPath
	}
	if !force {
		for _, path := range targets {
			if _, err := os.Stat(path); err == nil {
				return out, fmt.Errorf("%w: %s (use -force to overwrite)", ErrTargetExists, path)
			}
		}
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return out, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return out, fmt.Errorf("reading gzip stream: %w", err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("reading archive: %w", err)
		}
		target, ok := targets[hdr.Name]
		if !ok || hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := writeFile(tr, target, os.FileMode(hdr.Mode).Perm()); err != nil {
			return out, fmt.Errorf("restoring %s: %w", hdr.Name, err)
		}
		switch hdr.Name {
		case DatabaseEntry:
			out.Database = target
		case ConfigEntry:
			out.Config = target
		}
	}

	if out.Database == "" {
		return out, fmt.Errorf("archive %s has no %s entry", archivePath, DatabaseEntry)
	}
	// Stale WAL files belong to the replaced database.
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(dbPath + suffix)
	}
	return out, nil
}

func checkpointWAL(ctx context.Context, dbPath string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Checkpoint(ctx)
}

func writeFile(r io.Reader, target string, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o600
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".restore-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// addFileToTar adds a single file to the tar archive under the given name.
func addFileToTar(tw *tar.Writer, filePath, archiveName string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = archiveName

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	_, err = io.Copy(tw, f)
	return err
}

package csvdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magu1436/csvdatabase/log"
)

// Uploader copies a local file to remote storage.
// *minioutil.Client implements it.
type Uploader interface {
	UploadFile(ctx context.Context, remotePath string, path string) error
}

// Downloader copies a remote file to a local path without leaving
// a partially written file on failure.
// *minioutil.Client implements it.
type Downloader interface {
	Exists(ctx context.Context, remotePath string) bool
	DownloadFileAtomically(ctx context.Context, dstPath string, remotePath string) error
}

// Backup uploads the backing file as remotePath. Changes are blocked
// until the upload finishes so the copy matches the table.
func (db *DB) Backup(ctx context.Context, up Uploader, remotePath string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	timeStart := time.Now()
	err := up.UploadFile(ctx, remotePath, db.path)
	if log.IfErrf(err, "csvdb.Backup: failed to upload '%s' as '%s': %v", db.path, remotePath, err) {
		return err
	}
	log.Verbosef("csvdb.Backup: uploaded '%s' as '%s' in %s\n", db.path, remotePath, time.Since(timeStart))
	log.EventWithDuration("csvdb.backup", time.Since(timeStart), "path", db.path, "remote", remotePath)
	return nil
}

// Restore downloads remotePath over config.Path and opens it.
// Returns ErrSourceNotFound if remotePath doesn't exist.
// If download fails, the local file is not modified.
func Restore(ctx context.Context, down Downloader, remotePath string, config *Config) (*DB, error) {
	if config == nil || config.Path == "" {
		return nil, errors.New("csvdb: must provide config with Path")
	}
	if !down.Exists(ctx, remotePath) {
		return nil, fmt.Errorf("%w: remote '%s' doesn't exist", ErrSourceNotFound, remotePath)
	}
	if err := ensureDir(config.Path); err != nil {
		return nil, err
	}
	err := down.DownloadFileAtomically(ctx, config.Path, remotePath)
	if log.IfErrf(err, "csvdb.Restore: failed to download '%s' to '%s': %v", remotePath, config.Path, err) {
		return nil, err
	}
	log.Event("csvdb.restore", "path", config.Path, "remote", remotePath)
	return OpenConfig(config)
}

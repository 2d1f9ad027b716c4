// Package blobstore implements a byte-safe, content-addressed store
// keyed by the lowercase hex SHA-256 of its contents.
// Bytes live on disk under a configured root, hashed into a two-level
// fan-out directory (ab/cd/abcd...) to keep any one directory small;
// reference counts live in the same SQLite database as everything else.
// Put/Ref/Unref each run on the store's own *sql.DB handle and do not
// join a caller's transaction.
package blobstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v4"

	"netopscore/internal/apperrors"
)

// Store is the blob store. It is safe for concurrent use.
type Store struct {
	root string
	db   *sql.DB
}

// New creates a Store rooted at dir, creating it if necessary.
func New(db *sql.DB, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create root %s: %w", dir, err)
	}
	return &Store{root: dir, db: db}, nil
}

func (s *Store) pathFor(hash string) string {
	return filepath.Join(s.root, hash[:2], hash[2:4], hash)
}

// Put hashes data, writes it to disk if not already present, and
// increments its reference count by one. Returns the content hash.
//
// Identical bytes uploaded under different (project, filename, folder)
// families collapse onto one physical blob.
func (s *Store) Put(ctx context.Context, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	path := s.pathFor(hash)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.writeWithRetry(path, data); err != nil {
			return "", apperrors.Internal("failed to persist blob").Wrap(err)
		}
	} else if err != nil {
		return "", apperrors.Internal("failed to stat blob").Wrap(err)
	} else if err := verifyExisting(path, data); err != nil {
		// Same hash, different bytes: a SHA-256 collision. Unreachable
		// in practice, but must be rejected, never silently overwritten.
		return "", apperrors.Internal("hash collision detected for blob " + hash).Wrap(err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (hash, size, ref_count) VALUES (?, ?, 1)
		ON CONFLICT(hash) DO UPDATE SET ref_count = ref_count + 1`,
		hash, len(data)); err != nil {
		return "", apperrors.Internal("failed to record blob reference").Wrap(err)
	}

	return hash, nil
}

func (s *Store) writeWithRetry(path string, data []byte) error {
	op := func() error {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return err
		}
		return os.Rename(tmp, path)
	}
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	return backoff.Retry(op, b)
}

func verifyExisting(path string, data []byte) error {
	existing, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(existing) != len(data) {
		return fmt.Errorf("size mismatch: stored %d bytes, got %d", len(existing), len(data))
	}
	for i := range existing {
		if existing[i] != data[i] {
			return fmt.Errorf("byte mismatch at offset %d", i)
		}
	}
	return nil
}

// Get returns the bytes stored under hash.
func (s *Store) Get(hash string) ([]byte, error) {
	data, err := os.ReadFile(s.pathFor(hash))
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.NotFound("Blob", hash)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to read blob").Wrap(err)
	}
	return data, nil
}

// Ref increments hash's reference count (used when a new version points
// at an existing blob without re-uploading bytes, e.g. a future restore
// feature).
func (s *Store) Ref(ctx context.Context, hash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE blobs SET ref_count = ref_count + 1 WHERE hash = ?`, hash)
	if err != nil {
		return apperrors.Internal("failed to ref blob").Wrap(err)
	}
	return requireRowAffected(res, "Blob", hash)
}

// Unref decrements hash's reference count. When it reaches zero the
// blob becomes garbage-collectable; Unref does not delete bytes itself
// so a concurrent Put racing a GC sweep can never observe a missing
// file — deletion is left to an explicit, offline GC pass.
func (s *Store) Unref(ctx context.Context, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE blobs SET ref_count = MAX(ref_count - 1, 0) WHERE hash = ?`, hash)
	if err != nil {
		return apperrors.Internal("failed to unref blob").Wrap(err)
	}
	return requireRowAffected(res, "Blob", hash)
}

func requireRowAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Internal("failed to read rows affected").Wrap(err)
	}
	if n == 0 {
		return apperrors.NotFound(entity, id)
	}
	return nil
}

// GC deletes on-disk bytes for every blob with ref_count <= 0. It is
// intentionally not invoked automatically; callers schedule it (e.g. a
// periodic maintenance job) so that a momentary zero-refcount window
// during a version replace can't race a read.
func (s *Store) GC(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT hash FROM blobs WHERE ref_count <= 0`)
	if err != nil {
		return 0, apperrors.Internal("failed to list garbage blobs").Wrap(err)
	}
	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			rows.Close()
			return 0, apperrors.Internal("failed to scan blob hash").Wrap(err)
		}
		hashes = append(hashes, h)
	}
	rows.Close()

	removed := 0
	for _, h := range hashes {
		if err := os.Remove(s.pathFor(h)); err == nil || errors.Is(err, os.ErrNotExist) {
			if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE hash = ?`, h); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

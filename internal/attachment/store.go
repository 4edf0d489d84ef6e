// Package attachment stores uploaded files under the uploads root.
//
// An upload goes through two steps:
//
//  1. Stage streams the request part into <root>/temp. Nothing is visible
//     to readers yet.
//  2. SaveFile moves the staged file into a dated directory,
//     <root>/<YYYY-MM-DD>/<uuid><ext>, and returns the Attachment record.
//
// Staged files that never reach step 2 (validation failed, request aborted)
// are removed with Discard.
package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RebotePadel/GameHome/internal/apperror"
	"github.com/RebotePadel/GameHome/internal/model"
)

const (
	// TempDirName is the holding area under the uploads root. Files there
	// are not committed yet and must never be served.
	TempDirName = "temp"
	dateLayout  = "2006-01-02"
)

// Upload is a file received from a client and held in the temp area.
type Upload struct {
	TempPath string
	Filename string // original name from the client
	Mimetype string
	Size     int64
}

// Store manages files below one uploads root.
type Store struct {
	root    string
	tempDir string
	maxSize int64
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewStore creates the uploads root and its temp holding area.
func NewStore(root string, logger *slog.Logger) (*Store, error) {
	tempDir := filepath.Join(root, TempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("attachment: creating temp directory: %w", err)
	}
	return &Store{
		root:    root,
		tempDir: tempDir,
		maxSize: MaxFileSize,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}, nil
}

// Root returns the uploads directory served under /uploads.
func (s *Store) Root() string {
	return s.root
}

// Stage copies r into a temp file. The copy stops one byte past the size
// limit so an oversized upload is detected without reading it all.
func (s *Store) Stage(r io.Reader, filename, mimetype string) (*Upload, error) {
	tmp, err := os.CreateTemp(s.tempDir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("attachment: creating temp file: %w", err)
	}

	n, err := io.Copy(tmp, io.LimitReader(r, s.maxSize+1))
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("attachment: staging %s: %w", filename, err)
	}
	if n > s.maxSize {
		os.Remove(tmp.Name())
		return nil, apperror.TooLarge("files",
			fmt.Sprintf("file too large: %s (max %d MB)", filename, s.maxSize>>20))
	}

	return &Upload{
		TempPath: tmp.Name(),
		Filename: filename,
		Mimetype: mimetype,
		Size:     n,
	}, nil
}

// SaveFile moves a staged upload into today's directory.
func (s *Store) SaveFile(ctx context.Context, up *Upload) (*model.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	date := now.UTC().Format(dateLayout)
	dir := filepath.Join(s.root, date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("attachment: creating %s: %w", date, err)
	}

	id := s.newID()
	name := id + filepath.Ext(up.Filename)

	if err := os.Rename(up.TempPath, filepath.Join(dir, name)); err != nil {
		return nil, fmt.Errorf("attachment: moving %s: %w", up.Filename, err)
	}

	s.logger.Debug("attachment saved",
		slog.String("id", id),
		slog.String("filename", up.Filename),
		slog.Int64("size", up.Size),
	)

	return &model.Attachment{
		ID:        id,
		Filename:  up.Filename,
		Filepath:  path.Join(date, name),
		Mimetype:  up.Mimetype,
		Size:      up.Size,
		Type:      model.TypeFromMIME(up.Mimetype),
		CreatedAt: now,
	}, nil
}

// DeleteFile removes <root>/<rel>. It reports success and never fails the
// caller: a missing file or a path outside the root just returns false.
func (s *Store) DeleteFile(rel string) bool {
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		s.logger.Warn("refusing to delete path outside uploads root", slog.String("path", rel))
		return false
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel))); err != nil {
		level := slog.LevelError
		if errors.Is(err, fs.ErrNotExist) {
			level = slog.LevelWarn
		}
		s.logger.Log(context.Background(), level, "failed to delete attachment",
			slog.String("path", rel),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// DeleteFiles removes every path concurrently and waits for all of them.
// It returns how many were actually removed.
func (s *Store) DeleteFiles(rels []string) int {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		deleted int
	)
	for _, rel := range rels {
		wg.Go(func() {
			if s.DeleteFile(rel) {
				mu.Lock()
				deleted++
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	return deleted
}

// Discard removes staged uploads that will not be saved.
func (s *Store) Discard(uploads []*Upload) {
	for _, up := range uploads {
		if up == nil {
			continue
		}
		if err := os.Remove(up.TempPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to discard staged upload",
				slog.String("path", up.TempPath),
				slog.String("error", err.Error()),
			)
		}
	}
}

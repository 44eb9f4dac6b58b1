package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
)

// MaxProofSize bounds stored payment proofs.
const MaxProofSize = 16 << 20

var proofExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

// LocalStore keeps payment proofs on the local disk and checks product files.
type LocalStore struct {
	uploadDir string
	newName   func() string
	logger    *slog.Logger
}

// NewLocalStore constructs LocalStore.
func NewLocalStore(uploadDir string, logger *slog.Logger) *LocalStore {
	return &LocalStore{uploadDir: uploadDir, newName: uuid.NewString, logger: logger}
}

// Exists reports whether path names a regular file.
func (s *LocalStore) Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// SaveProof stores content under a random name keeping the lower-cased
// extension of filename.
func (s *LocalStore) SaveProof(ctx context.Context, filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !proofExtensions[ext] {
		return "", domainErrors.NewValidationError("payment_proof", "must be an image or pdf")
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.uploadDir, s.newName()+ext)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	n, err := io.Copy(f, io.LimitReader(&ctxReader{ctx: ctx, r: content}, MaxProofSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > MaxProofSize {
		err = domainErrors.NewValidationError("payment_proof", "must be at most 16MB")
	}
	if err == nil && n == 0 {
		err = domainErrors.NewValidationError("payment_proof", "is required")
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}

	s.logger.Debug("payment proof stored", slog.String("path", path), slog.Int64("bytes", n))
	return path, nil
}

// DeleteProof removes a stored proof. A missing file is not an error.
func (s *LocalStore) DeleteProof(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete payment proof: %w", err)
	}
	s.logger.Debug("payment proof deleted", slog.String("path", path))
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

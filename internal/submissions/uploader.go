package submissions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/mail"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/image-intake/pkg/storage"
)

// AcceptCommand is a single image upload.
type AcceptCommand struct {
	Email       string
	Filename    string
	ContentType string
	Body        io.Reader
}

// Uploader validates incoming images, writes them to storage, and records a
// submission for each one. A rejected upload leaves neither a file nor a row.
type Uploader struct {
	sys          System
	storage      storage.System
	logger       *slog.Logger
	maxSize      int64
	allowedTypes []string
}

// NewUploader creates an Uploader that accepts at most maxSize bytes of one of
// allowedTypes.
func NewUploader(sys System, store storage.System, logger *slog.Logger, maxSize int64, allowedTypes []string) *Uploader {
	return &Uploader{
		sys:          sys,
		storage:      store,
		logger:       logger.With("system", "uploader"),
		maxSize:      maxSize,
		allowedTypes: allowedTypes,
	}
}

// MaxSize returns the per-image byte limit.
func (u *Uploader) MaxSize() int64 {
	return u.maxSize
}

// Accept streams cmd.Body into storage under a fresh submission id and
// records the submission. If recording fails the stored file is removed.
func (u *Uploader) Accept(ctx context.Context, cmd AcceptCommand) (*Receipt, error) {
	if err := ValidateEmail(cmd.Email); err != nil {
		return nil, err
	}
	if err := u.checkContentType(cmd.ContentType); err != nil {
		return nil, err
	}
	if cmd.Body == nil {
		return nil, fmt.Errorf("%w: image required", ErrInvalidForm)
	}

	id := uuid.New()
	key := id.String() + filepath.Ext(cmd.Filename)

	n, err := u.storage.Store(ctx, key, &limitReader{r: cmd.Body, remaining: u.maxSize})
	if err != nil {
		if errors.Is(err, ErrPayloadTooLarge) {
			return nil, fmt.Errorf("%w (%d bytes)", ErrPayloadTooLarge, u.maxSize)
		}
		if errors.Is(err, storage.ErrExists) {
			return nil, fmt.Errorf("%w: image %s already stored", ErrDuplicate, key)
		}
		return nil, fmt.Errorf("store image: %w: %w", ErrStorage, err)
	}

	if n == 0 {
		u.discard(ctx, key)
		return nil, fmt.Errorf("%w: image is empty", ErrInvalidForm)
	}

	path, err := u.storage.Path(ctx, key)
	if err != nil {
		u.discard(ctx, key)
		return nil, fmt.Errorf("resolve image path: %w: %w", ErrStorage, err)
	}

	sub, err := u.sys.Create(ctx, CreateCommand{
		ID:                id,
		Email:             cmd.Email,
		OriginalImagePath: path,
	})
	if err != nil {
		u.discard(ctx, key)
		return nil, err
	}

	u.logger.Info("image accepted", "id", sub.ID, "bytes", n, "content_type", cmd.ContentType)
	return &Receipt{SubmissionID: sub.ID, StoredPath: path}, nil
}

func (u *Uploader) checkContentType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if slices.Contains(u.allowedTypes, mediaType) {
		return nil
	}
	return fmt.Errorf(
		"%w: %q (allowed: %s)",
		ErrInvalidContentType, contentType, strings.Join(u.allowedTypes, ", "),
	)
}

func (u *Uploader) discard(ctx context.Context, key string) {
	if err := u.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		u.logger.Error("cleanup failed after rejected upload", "key", key, "error", err)
	}
}

// ValidateEmail reports ErrInvalidEmail unless address is a single bare
// RFC 5322 address.
func ValidateEmail(address string) error {
	if address == "" {
		return fmt.Errorf("%w: email required", ErrInvalidEmail)
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil || parsed.Address != address {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, address)
	}
	return nil
}

// limitReader fails with ErrPayloadTooLarge as soon as more than remaining
// bytes have been read.
type limitReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrPayloadTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrPayloadTooLarge
	}
	return n, err
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"usermgr/internal/domain"
	"usermgr/internal/storage"
)

// ErrExportStorageNotConfigured is returned when an upload is requested without a bucket.
var ErrExportStorageNotConfigured = errors.New("export storage is not configured")

// ExportedUser is the public projection of a user; passwords never leave the store.
type ExportedUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ExportService writes snapshots of the users table.
type ExportService interface {
	Export(ctx context.Context, w io.Writer) (int, error)
	Upload(ctx context.Context) (location string, count int, err error)
	ListExports(ctx context.Context) ([]storage.ObjectInfo, error)
}

type exportService struct {
	users     UserService
	store     storage.Service
	bucket    string
	keyPrefix string
}

// NewExportService builds an export service. store may be nil when only local exports are needed.
func NewExportService(users UserService, store storage.Service, bucket, keyPrefix string) ExportService {
	return &exportService{
		users:     users,
		store:     store,
		bucket:    strings.TrimSpace(bucket),
		keyPrefix: strings.Trim(keyPrefix, "/"),
	}
}

func (s *exportService) Export(ctx context.Context, w io.Writer) (int, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sanitizeUsers(users)); err != nil {
		return 0, fmt.Errorf("encode users: %w", err)
	}
	return len(users), nil
}

func (s *exportService) Upload(ctx context.Context) (string, int, error) {
	if s.store == nil || s.bucket == "" {
		return "", 0, ErrExportStorageNotConfigured
	}

	var buf bytes.Buffer
	count, err := s.Export(ctx, &buf)
	if err != nil {
		return "", 0, err
	}

	location, err := s.store.Upload(ctx, &buf, storage.UploadOptions{
		Bucket:      s.bucket,
		Key:         path.Join(s.keyPrefix, "users-"+uuid.NewString()+".json"),
		ContentType: "application/json",
	})
	if err != nil {
		return "", 0, err
	}
	return location, count, nil
}

func (s *exportService) ListExports(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.store == nil || s.bucket == "" {
		return nil, ErrExportStorageNotConfigured
	}
	prefix := s.keyPrefix
	if prefix != "" {
		prefix += "/"
	}
	return s.store.ListObjects(ctx, s.bucket, prefix)
}

func sanitizeUsers(users []domain.User) []ExportedUser {
	out := make([]ExportedUser, 0, len(users))
	for _, user := range users {
		out = append(out, ExportedUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		})
	}
	return out
}

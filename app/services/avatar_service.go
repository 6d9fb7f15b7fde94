package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Rakhulsr/go-blog/app/repositories"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	AvatarDir     = "uploads"
	MaxAvatarSize = 5 << 20
)

var allowedAvatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type AvatarService struct {
	users     repositories.UserRepositoryImpl
	staticDir string
	urlPrefix string
	log       *logrus.Logger
}

// NewAvatarService stores files under staticDir/uploads, which the router serves
// at urlPrefix.
func NewAvatarService(users repositories.UserRepositoryImpl, staticDir, urlPrefix string, log *logrus.Logger) *AvatarService {
	return &AvatarService{users: users, staticDir: staticDir, urlPrefix: urlPrefix, log: log}
}

func (s *AvatarService) UploadAvatar(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", fieldError("avatar", "No selected file.")
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", fieldError("avatar", "The uploaded file is empty.")
	}

	ext, ok := allowedAvatarTypes[mimetype.Detect(head).String()]
	if !ok {
		return "", fieldError("avatar", "Avatar must be a PNG, JPEG, GIF or WebP image.")
	}

	name := AvatarFilename(userID, filename, ext)
	dir := filepath.Join(s.staticDir, AvatarDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), r)); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", dst, err)
	}

	url := path.Join(s.urlPrefix, AvatarDir, name)
	if err := s.users.UpdateAvatar(ctx, userID, url); err != nil {
		os.Remove(dst)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return "", err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "file": name}).Info("avatar uploaded")
	return url, nil
}

// AvatarFilename builds a safe file name from the client-supplied one. The
// extension always comes from the sniffed type.
func AvatarFilename(userID, filename, ext string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = slug.Make(base)
	if base == "" {
		base = "avatar"
	}
	return fmt.Sprintf("%s-%s%s", userID, base, ext)
}

package admin

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/adampresley/weddinggallery/pkg/models"
)

/*
Spooler copies uploaded multipart files to a private directory so the
background upload job can read them after the request has returned.
*/
type Spooler struct {
	dir string
}

func NewSpooler(dir string) Spooler {
	return Spooler{dir: dir}
}

/*
Spool writes every image file to a fresh directory. Files that are not
images are skipped. The returned cleanup removes the directory.
*/
func (s Spooler) Spool(headers []*multipart.FileHeader) ([]models.UploadFile, func(), error) {
	var (
		err    error
		tmpDir string
	)

	noop := func() {}

	if tmpDir, err = os.MkdirTemp(s.dir, "upload-*"); err != nil {
		return nil, noop, fmt.Errorf("error creating spool directory: %w", err)
	}

	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			slog.Error("error removing spool directory", "error", err, "dir", tmpDir)
		}
	}

	result := make([]models.UploadFile, 0, len(headers))

	for index, header := range headers {
		if !IsImage(header) {
			slog.Info("skipping non-image upload", "name", header.Filename, "contentType", header.Header.Get("Content-Type"))
			continue
		}

		path := filepath.Join(tmpDir, fmt.Sprintf("%04d%s", index, strings.ToLower(filepath.Ext(header.Filename))))

		if err = spoolFile(header, path); err != nil {
			cleanup()
			return nil, noop, err
		}

		result = append(result, models.UploadFile{
			Name: header.Filename,
			Size: header.Size,
			Open: func() (io.ReadCloser, error) {
				return os.Open(path)
			},
		})
	}

	return result, cleanup, nil
}

func IsImage(header *multipart.FileHeader) bool {
	contentType := header.Header.Get("Content-Type")

	if contentType == "" {
		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic":
			return true
		}

		return false
	}

	return strings.HasPrefix(contentType, "image/")
}

func spoolFile(header *multipart.FileHeader, path string) error {
	src, err := header.Open()

	if err != nil {
		return fmt.Errorf("error opening uploaded file '%s': %w", header.Filename, err)
	}

	defer src.Close()

	dst, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("error creating spool file for '%s': %w", header.Filename, err)
	}

	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("error spooling '%s': %w", header.Filename, err)
	}

	return dst.Close()
}

func openFileHeader(header *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return header.Open()
	}
}

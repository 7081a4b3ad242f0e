package services

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/go-resty/resty/v2"
)

type ZipServiceConfig struct {
	Timeout time.Duration
}

type ZipServicer interface {
	ArchiveName(album string) string
	WriteGalleryZip(ctx context.Context, w io.Writer, photos []*models.Photo) (int, error)
}

type ZipService struct {
	client *resty.Client
}

func NewZipService(config ZipServiceConfig) ZipService {
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}

	return ZipService{
		client: resty.New().SetTimeout(config.Timeout),
	}
}

func (s ZipService) ArchiveName(album string) string {
	if album == "" {
		album = models.AllAlbums
	}

	return fmt.Sprintf("wedding_photos_%s.zip", album)
}

/*
WriteGalleryZip downloads every photo in order and streams it into a
zip written to w as photo1.jpg, photo2.jpg and so on. A photo that
cannot be downloaded is logged and skipped. It returns the number of
photos added.
*/
func (s ZipService) WriteGalleryZip(ctx context.Context, w io.Writer, photos []*models.Photo) (int, error) {
	var (
		err   error
		added int
	)

	zipWriter := zip.NewWriter(w)

	for index, photo := range photos {
		if err = ctx.Err(); err != nil {
			_ = zipWriter.Close()
			return added, err
		}

		imageName := fmt.Sprintf("photo%d.jpg", index+1)

		if err = s.addPhoto(ctx, zipWriter, imageName, photo.URL); err != nil {
			slog.Error("failed to add photo to zip", "error", err, "photoID", photo.ID, "url", photo.URL)
			continue
		}

		added++
	}

	if err = zipWriter.Close(); err != nil {
		return added, fmt.Errorf("failed to close zip writer: %w", err)
	}

	return added, nil
}

func (s ZipService) addPhoto(ctx context.Context, zipWriter *zip.Writer, imageName, url string) error {
	response, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)

	if err != nil {
		return fmt.Errorf("failed to download '%s': %w", url, err)
	}

	body := response.RawBody()
	defer body.Close()

	if response.IsError() {
		return fmt.Errorf("failed to download '%s', status: %s", url, response.Status())
	}

	dest, err := zipWriter.Create(imageName)

	if err != nil {
		return fmt.Errorf("failed to create file '%s' in zip: %w", imageName, err)
	}

	if _, err = io.Copy(dest, body); err != nil {
		return fmt.Errorf("failed to copy file '%s' to zip: %w", imageName, err)
	}

	return nil
}

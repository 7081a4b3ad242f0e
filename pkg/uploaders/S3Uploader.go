package uploaders

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

type S3UploaderConfig struct {
	Bucket        string
	MaxImageEdge  uint
	PublicBaseURL string
	S3Client      s3.S3Client
	UploadFolder  string
}

/*
S3Uploader stores photos in a bucket that is served publicly. Images
whose longest edge is over MaxImageEdge are scaled down first.
*/
type S3Uploader struct {
	bucket        string
	maxImageEdge  uint
	publicBaseURL string
	s3Client      s3.S3Client
	uploadFolder  string
}

func NewS3Uploader(config S3UploaderConfig) S3Uploader {
	return S3Uploader{
		bucket:        config.Bucket,
		maxImageEdge:  config.MaxImageEdge,
		publicBaseURL: strings.TrimSuffix(config.PublicBaseURL, "/"),
		s3Client:      config.S3Client,
		uploadFolder:  config.UploadFolder,
	}
}

func (u S3Uploader) Upload(ctx context.Context, file models.UploadFile) (string, error) {
	var (
		err  error
		body io.ReadCloser
		data []byte
	)

	if err = ctx.Err(); err != nil {
		return "", err
	}

	if body, err = file.Open(); err != nil {
		return "", fmt.Errorf("error opening file '%s': %w", file.Name, err)
	}

	defer body.Close()

	if data, err = io.ReadAll(body); err != nil {
		return "", fmt.Errorf("error reading file '%s': %w", file.Name, err)
	}

	ext := strings.ToLower(filepath.Ext(file.Name))

	if resized, ok, err := Downscale(data, u.maxImageEdge); err == nil && ok {
		data = resized
		ext = ".jpg"
	}

	key := path.Join(u.uploadFolder, uuid.New().String()+ext)

	if _, err = u.s3Client.Put(u.bucket, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("error uploading '%s' to S3: %w", file.Name, err)
	}

	return u.URLForKey(key)
}

// URLForKey returns the public URL of an object key.
func (u S3Uploader) URLForKey(key string) (string, error) {
	if u.publicBaseURL != "" {
		return u.publicBaseURL + "/" + key, nil
	}

	url, err := u.s3Client.GetUrl(u.bucket, key)

	if err != nil {
		return "", fmt.Errorf("error getting URL for '%s': %w", key, err)
	}

	return url, nil
}

/*
Downscale decodes data and, when its longest edge is over maxEdge,
returns a JPEG resized so the longest edge equals maxEdge. ok is false
when the image already fits or maxEdge is zero.
*/
func Downscale(data []byte, maxEdge uint) (result []byte, ok bool, err error) {
	var (
		img image.Image
		buf bytes.Buffer
	)

	if maxEdge == 0 {
		return nil, false, nil
	}

	if img, _, err = image.Decode(bytes.NewReader(data)); err != nil {
		return nil, false, fmt.Errorf("error decoding image: %w", err)
	}

	bounds := img.Bounds()
	width := uint(bounds.Dx())
	height := uint(bounds.Dy())

	if width <= maxEdge && height <= maxEdge {
		return nil, false, nil
	}

	var newWidth, newHeight uint

	if width > height {
		newWidth = maxEdge
		newHeight = uint(float64(height) * (float64(maxEdge) / float64(width)))
	} else {
		newHeight = maxEdge
		newWidth = uint(float64(width) * (float64(maxEdge) / float64(height)))
	}

	resized := resize.Resize(newWidth, newHeight, img, resize.Lanczos3)

	if err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, false, fmt.Errorf("error encoding resized image: %w", err)
	}

	return buf.Bytes(), true, nil
}

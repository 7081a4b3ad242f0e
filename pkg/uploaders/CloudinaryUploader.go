package uploaders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/go-resty/resty/v2"
)

type CloudinaryUploaderConfig struct {
	CloudName    string
	Endpoint     string
	Timeout      time.Duration
	UploadPreset string
}

/*
CloudinaryUploader posts files to an unsigned Cloudinary upload
preset. A response is only a success when it carries secure_url.
*/
type CloudinaryUploader struct {
	client       *resty.Client
	endpoint     string
	uploadPreset string
}

type cloudinaryUploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

type cloudinaryErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewCloudinaryUploader(config CloudinaryUploaderConfig) CloudinaryUploader {
	if config.Endpoint == "" {
		config.Endpoint = fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/upload", config.CloudName)
	}

	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}

	return CloudinaryUploader{
		client:       resty.New().SetTimeout(config.Timeout),
		endpoint:     config.Endpoint,
		uploadPreset: config.UploadPreset,
	}
}

func (u CloudinaryUploader) Upload(ctx context.Context, file models.UploadFile) (string, error) {
	var (
		result    cloudinaryUploadResponse
		errResult cloudinaryErrorResponse
	)

	body, err := file.Open()

	if err != nil {
		return "", fmt.Errorf("error opening file '%s': %w", file.Name, err)
	}

	defer body.Close()

	response, err := u.client.R().
		SetContext(ctx).
		SetFileReader("file", file.Name, body).
		SetFormData(map[string]string{
			"upload_preset": u.uploadPreset,
		}).
		SetResult(&result).
		SetError(&errResult).
		Post(u.endpoint)

	if err != nil {
		return "", fmt.Errorf("network error uploading '%s': %w", file.Name, err)
	}

	if response.IsError() {
		message := strings.TrimSpace(errResult.Error.Message)

		if message == "" {
			message = response.Status()
		}

		return "", fmt.Errorf("upload of '%s' failed with status %d: %s", file.Name, response.StatusCode(), message)
	}

	if result.SecureURL == "" {
		return "", fmt.Errorf("upload of '%s' returned no URL", file.Name)
	}

	return result.SecureURL, nil
}

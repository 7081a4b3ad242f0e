package uploaders

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFile(name, content string) models.UploadFile {
	return models.UploadFile{
		Name: name,
		Size: int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func TestNewCloudinaryUploaderDefaultEndpoint(t *testing.T) {
	u := NewCloudinaryUploader(CloudinaryUploaderConfig{CloudName: "demo"})
	assert.Equal(t, "https://api.cloudinary.com/v1_1/demo/upload", u.endpoint)
}

func TestCloudinaryUploader_Upload(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		response   string
		wantURL    string
		wantErrMsg string
	}{
		{
			name:     "success",
			status:   http.StatusOK,
			response: `{"secure_url":"https://res.cloudinary.com/demo/a.jpg","public_id":"a"}`,
			wantURL:  "https://res.cloudinary.com/demo/a.jpg",
		},
		{
			name:       "rejected",
			status:     http.StatusBadRequest,
			response:   `{"error":{"message":"Upload preset not found"}}`,
			wantErrMsg: "Upload preset not found",
		},
		{
			name:       "no url",
			status:     http.StatusOK,
			response:   `{"public_id":"a"}`,
			wantErrMsg: "returned no URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseMultipartForm(1<<20))
				assert.Equal(t, "unsigned_preset", r.FormValue("upload_preset"))

				file, header, err := r.FormFile("file")
				require.NoError(t, err)
				defer file.Close()

				b, _ := io.ReadAll(file)
				assert.Equal(t, "a.jpg", header.Filename)
				assert.Equal(t, "image-bytes", string(b))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			u := NewCloudinaryUploader(CloudinaryUploaderConfig{Endpoint: server.URL, UploadPreset: "unsigned_preset"})
			url, err := u.Upload(context.Background(), testFile("a.jpg", "image-bytes"))

			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				assert.Empty(t, url)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, url)
		})
	}
}

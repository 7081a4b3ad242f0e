package admin

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPart struct {
	name        string
	contentType string
	content     string
}

func multipartFiles(t *testing.T, parts ...testPart) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, p := range parts {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+p.name+`"`)

		if p.contentType != "" {
			header.Set("Content-Type", p.contentType)
		}

		w, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.content))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	r := httptest.NewRequest("POST", "/admin/uploads", body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, r.ParseMultipartForm(1<<20))

	return r.MultipartForm.File["files"]
}

func TestSpooler_Spool(t *testing.T) {
	dir := t.TempDir()
	s := NewSpooler(dir)

	headers := multipartFiles(t,
		testPart{name: "one.jpg", contentType: "image/jpeg", content: "first"},
		testPart{name: "notes.txt", contentType: "text/plain", content: "skip me"},
		testPart{name: "two.PNG", content: "second"},
	)

	files, cleanup, err := s.Spool(headers)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "one.jpg", files[0].Name)
	assert.Equal(t, "two.PNG", files[1].Name)

	for i, want := range []string{"first", "second"} {
		for attempt := 0; attempt < 2; attempt++ {
			rc, err := files[i].Open()
			require.NoError(t, err)

			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			_ = rc.Close()

			assert.Equal(t, want, string(b))
		}
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	cleanup()

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = files[0].Open()
	assert.Error(t, err)
}

func TestSpooler_SpoolMissingDirectory(t *testing.T) {
	s := NewSpooler("/definitely/not/a/real/dir")

	_, cleanup, err := s.Spool(multipartFiles(t, testPart{name: "a.jpg", contentType: "image/jpeg", content: "x"}))

	assert.Error(t, err)
	assert.NotNil(t, cleanup)
}

func TestIsImage(t *testing.T) {
	headers := multipartFiles(t,
		testPart{name: "a.jpg", contentType: "image/jpeg"},
		testPart{name: "b.heic", contentType: "application/octet-stream"},
		testPart{name: "c.webp"},
		testPart{name: "d.pdf"},
	)

	assert.True(t, IsImage(headers[0]))
	assert.False(t, IsImage(headers[1]))
	assert.True(t, IsImage(headers[2]))
	assert.False(t, IsImage(headers[3]))
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveClientSlug(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: DefaultClientSlug},
		{raw: "   ", want: DefaultClientSlug},
		{raw: "Smith-Jones", want: "smith-jones"},
		{raw: " anna2025 ", want: "anna2025"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveClientSlug(tt.raw))
		})
	}
}

func TestAlbums(t *testing.T) {
	assert.True(t, IsValidAlbum(""))
	assert.True(t, IsValidAlbum("portraits"))
	assert.False(t, IsValidAlbum("honeymoon"))

	assert.Equal(t, AllAlbums, NormalizeAlbumFilter(""))
	assert.Equal(t, AllAlbums, NormalizeAlbumFilter("honeymoon"))
	assert.Equal(t, "details", NormalizeAlbumFilter("details"))

	assert.Equal(t, []string{"ceremony", "portraits", "reception", "details"}, AlbumIDs())
}

func TestUploadProgress(t *testing.T) {
	p := UploadProgress{Total: 4, Completed: 1, Failed: 1}

	assert.Equal(t, 2, p.Done())
	assert.Equal(t, 50, p.Percent())
	assert.Equal(t, 0, UploadProgress{}.Percent())
}

package models

import "github.com/adampresley/adamgokit/slices"

const (
	AllAlbums = "all"
)

/*
Album is one of the fixed photo categories shared by the upload
form and the public gallery filter.
*/
type Album struct {
	ID   string
	Name string
	Icon string
}

var Albums = []Album{
	{ID: "ceremony", Name: "Ceremony", Icon: "💍"},
	{ID: "portraits", Name: "Portraits", Icon: "📷"},
	{ID: "reception", Name: "Reception", Icon: "🥂"},
	{ID: "details", Name: "Details", Icon: "🌸"},
}

func AlbumIDs() []string {
	return slices.Map(Albums, func(input Album, index int) string {
		return input.ID
	})
}

/*
IsValidAlbum reports whether id is a known category. The empty
string is valid and means "no category".
*/
func IsValidAlbum(id string) bool {
	if id == "" {
		return true
	}

	return slices.IsInSlice(id, AlbumIDs())
}

/*
NormalizeAlbumFilter returns the gallery filter for a raw query
value. Anything unknown shows all photos.
*/
func NormalizeAlbumFilter(raw string) string {
	if raw == "" || raw == AllAlbums || !IsValidAlbum(raw) {
		return AllAlbums
	}

	return raw
}

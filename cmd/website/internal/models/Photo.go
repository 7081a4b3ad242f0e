package models

type GalleryPhoto struct {
	ID       string
	URL      string
	Album    string
	Order    int
	HasOrder bool
	Selected bool
	PrevID   string
	NextID   string
}

type AlbumTab struct {
	ID     string
	Name   string
	Icon   string
	Active bool
	URL    string
}

package models

import (
	"sort"
)

type Photo struct {
	ID         string `db:"id"`
	URL        string `db:"url"`
	ClientSlug string `db:"client_slug"`
	Album      string `db:"album"`
	Order      *int   `db:"sort_order"`
	Timestamp  int64  `db:"timestamp_ms"`
}

func (p *Photo) HasOrder() bool {
	return p.Order != nil
}

func (p *Photo) OrderValue() int {
	if p.Order == nil {
		return 0
	}

	return *p.Order
}

/*
PhotoLess compares two photos for display. Manual order wins when both
photos carry one, otherwise the newest photo comes first.
*/
func PhotoLess(a, b *Photo) bool {
	if a.Order != nil && b.Order != nil {
		return *a.Order < *b.Order
	}

	return a.Timestamp > b.Timestamp
}

func SortPhotos(photos []*Photo) {
	sort.SliceStable(photos, func(i, j int) bool {
		return PhotoLess(photos[i], photos[j])
	})
}

// FilterByAlbum returns photos in album. "all" returns everything.
func FilterByAlbum(photos []*Photo, album string) []*Photo {
	if album == "" || album == AllAlbums {
		return photos
	}

	result := make([]*Photo, 0, len(photos))

	for _, p := range photos {
		if p.Album == album {
			result = append(result, p)
		}
	}

	return result
}

func PhotoIDs(photos []*Photo) []string {
	result := make([]string, 0, len(photos))

	for _, p := range photos {
		result = append(result, p.ID)
	}

	return result
}

type OrderUpdate struct {
	ID    string
	Order int
}

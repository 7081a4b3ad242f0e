package viewmodels

import (
	"github.com/adampresley/adamgokit/slices"
	internalmodels "github.com/adampresley/weddinggallery/cmd/website/internal/models"
	"github.com/adampresley/weddinggallery/pkg/models"
)

func ToGalleryPhotos(photos []*models.Photo, selection *models.Selection) []internalmodels.GalleryPhoto {
	return slices.Map(photos, func(input *models.Photo, index int) internalmodels.GalleryPhoto {
		result := internalmodels.GalleryPhoto{
			ID:       input.ID,
			URL:      input.URL,
			Album:    input.Album,
			Order:    input.OrderValue(),
			HasOrder: input.HasOrder(),
			Selected: selection != nil && selection.Contains(input.ID),
		}

		if index > 0 {
			result.PrevID = photos[index-1].ID
		}

		if index < len(photos)-1 {
			result.NextID = photos[index+1].ID
		}

		return result
	})
}

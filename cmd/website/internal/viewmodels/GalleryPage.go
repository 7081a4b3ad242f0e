package viewmodels

import (
	internalmodels "github.com/adampresley/weddinggallery/cmd/website/internal/models"
	"github.com/adampresley/weddinggallery/pkg/models"
)

type GalleryPage struct {
	BaseViewModel

	ClientSlug    string
	SelectedAlbum string
	Header        models.HeaderSettings
	Albums        []internalmodels.AlbumTab
	Photos        []internalmodels.GalleryPhoto
	DownloadURL   string
}

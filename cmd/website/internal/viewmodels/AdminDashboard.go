package viewmodels

import (
	internalmodels "github.com/adampresley/weddinggallery/cmd/website/internal/models"
	"github.com/adampresley/weddinggallery/pkg/models"
)

type AdminDashboard struct {
	BaseViewModel

	Admin          *models.Admin
	ClientFilter   string
	Header         models.HeaderSettings
	Albums         []models.Album
	Photos         []internalmodels.GalleryPhoto
	SelectedCount  int
	AllSelected    bool
	ParallelUpload int
}

package viewmodels

import "github.com/adampresley/weddinggallery/pkg/models"

type UploadProgress struct {
	BaseViewModel

	Job     models.UploadJob
	Percent int
}

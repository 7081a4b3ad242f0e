package viewmodels

import (
	"net/http"

	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/weddinggallery/pkg/models"
)

type BaseViewModel struct {
	Message            string
	IsError            bool
	IsWarning          bool
	IsHtmx             bool
	JavascriptIncludes []rendering.JavascriptInclude
}

func GetAdminFromContext(r *http.Request) *models.Admin {
	if result, ok := r.Context().Value("admin").(*models.Admin); ok {
		return result
	}

	return &models.Admin{}
}

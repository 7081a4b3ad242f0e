package gallery

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	internalmodels "github.com/adampresley/weddinggallery/cmd/website/internal/models"
	"github.com/adampresley/weddinggallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/adampresley/weddinggallery/pkg/services"
)

type GalleryHandlers interface {
	DownloadAll(w http.ResponseWriter, r *http.Request)
	GalleryPage(w http.ResponseWriter, r *http.Request)
}

type GalleryControllerConfig struct {
	PhotoService    services.PhotoStorer
	Renderer        rendering.TemplateRenderer
	SettingsService services.SettingsServicer
	ZipService      services.ZipServicer
}

type GalleryController struct {
	photoService    services.PhotoStorer
	renderer        rendering.TemplateRenderer
	settingsService services.SettingsServicer
	zipService      services.ZipServicer
}

func NewGalleryController(config GalleryControllerConfig) GalleryController {
	return GalleryController{
		photoService:    config.PhotoService,
		renderer:        config.Renderer,
		settingsService: config.SettingsService,
		zipService:      config.ZipService,
	}
}

/*
GET /?client={slug}&album={album}
*/
func (c GalleryController) GalleryPage(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		photos []*models.Photo
	)

	pageName := "pages/gallery"
	clientSlug := models.ResolveClientSlug(httphelpers.GetFromRequest[string](r, "client"))
	album := models.NormalizeAlbumFilter(httphelpers.GetFromRequest[string](r, "album"))

	viewData := viewmodels.GalleryPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/gallery.js"},
			},
		},
		ClientSlug:    clientSlug,
		SelectedAlbum: album,
		Albums:        albumTabs(clientSlug, album),
		Photos:        []internalmodels.GalleryPhoto{},
		DownloadURL:   galleryURL("/download", clientSlug, album),
	}

	if viewData.Header, err = c.settingsService.GetHeader(r.Context()); err != nil {
		slog.Error("error getting header settings", "error", err)
		viewData.Header = models.HeaderSettings{Title: models.DefaultHeaderTitle}
	}

	if photos, err = c.loadPhotos(r, clientSlug, album); err != nil {
		slog.Error("error loading gallery photos", "error", err, "clientSlug", clientSlug, "album", album)
		viewData.IsError = true
		viewData.Message = "There was a problem getting the photos for this gallery."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Photos = viewmodels.ToGalleryPhotos(photos, nil)
	c.renderer.Render(pageName, viewData, w)
}

/*
GET /download?client={slug}&album={album}
*/
func (c GalleryController) DownloadAll(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		photos []*models.Photo
	)

	clientSlug := models.ResolveClientSlug(httphelpers.GetFromRequest[string](r, "client"))
	album := models.NormalizeAlbumFilter(httphelpers.GetFromRequest[string](r, "album"))

	if photos, err = c.loadPhotos(r, clientSlug, album); err != nil {
		slog.Error("error loading photos for download", "error", err, "clientSlug", clientSlug, "album", album)
		httphelpers.TextInternalServerError(w, "Failed to prepare the download")
		return
	}

	if len(photos) == 0 {
		httphelpers.WriteText(w, http.StatusNotFound, "There are no photos to download")
		return
	}

	fileName := c.zipService.ArchiveName(album)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))

	added, err := c.zipService.WriteGalleryZip(r.Context(), w, photos)

	if err != nil {
		slog.Error("error streaming gallery zip", "error", err, "clientSlug", clientSlug, "added", added)
		return
	}

	slog.Info("gallery zip download completed", "clientSlug", clientSlug, "album", album, "photos", added, "requested", len(photos))
}

func (c GalleryController) loadPhotos(r *http.Request, clientSlug, album string) ([]*models.Photo, error) {
	photos, err := c.photoService.GetByClient(r.Context(), clientSlug)

	if err != nil {
		return nil, err
	}

	photos = models.FilterByAlbum(photos, album)
	models.SortPhotos(photos)
	return photos, nil
}

func albumTabs(clientSlug, selected string) []internalmodels.AlbumTab {
	result := []internalmodels.AlbumTab{
		{ID: models.AllAlbums, Name: "All photos", Icon: "🎉", Active: selected == models.AllAlbums, URL: galleryURL("/", clientSlug, models.AllAlbums)},
	}

	for _, album := range models.Albums {
		result = append(result, internalmodels.AlbumTab{
			ID:     album.ID,
			Name:   album.Name,
			Icon:   album.Icon,
			Active: selected == album.ID,
			URL:    galleryURL("/", clientSlug, album.ID),
		})
	}

	return result
}

func galleryURL(path, clientSlug, album string) string {
	values := url.Values{}
	values.Set("client", clientSlug)

	if album != "" && album != models.AllAlbums {
		values.Set("album", album)
	}

	return path + "?" + values.Encode()
}

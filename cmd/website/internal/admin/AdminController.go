package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/weddinggallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/adampresley/weddinggallery/pkg/services"
)

type AdminControllerConfig struct {
	DeleteService      services.DeleteServicer
	MaxParallelUploads int
	PhotoService       services.PhotoStorer
	Renderer           rendering.TemplateRenderer
	ReorderService     services.ReorderServicer
	SettingsService    services.SettingsServicer
	Spooler            Spooler
	UploadJobService   services.UploadJobServicer
	Uploader           services.Uploader
}

type AdminController struct {
	deleteService      services.DeleteServicer
	maxParallelUploads int
	photoService       services.PhotoStorer
	renderer           rendering.TemplateRenderer
	reorderService     services.ReorderServicer
	settingsService    services.SettingsServicer
	spooler            Spooler
	uploadJobService   services.UploadJobServicer
	uploader           services.Uploader
}

/*
dashboardState is what an action wants the dashboard to show after it
ran. A nil photos slice means "load from the store".
*/
type dashboardState struct {
	clientFilter string
	selection    *models.Selection
	photos       []*models.Photo
	header       *models.HeaderSettings
	message      string
	isError      bool
	isWarning    bool
}

func NewAdminController(config AdminControllerConfig) AdminController {
	return AdminController{
		deleteService:      config.DeleteService,
		maxParallelUploads: config.MaxParallelUploads,
		photoService:       config.PhotoService,
		renderer:           config.Renderer,
		reorderService:     config.ReorderService,
		settingsService:    config.SettingsService,
		spooler:            config.Spooler,
		uploadJobService:   config.UploadJobService,
		uploader:           config.Uploader,
	}
}

/*
GET /admin
*/
func (c AdminController) DashboardPage(w http.ResponseWriter, r *http.Request) {
	c.renderDashboard(w, r, dashboardState{
		clientFilter: clientFilter(r),
		selection:    models.NewSelection(),
	})
}

/*
POST /admin/uploads
*/
func (c AdminController) StartUpload(w http.ResponseWriter, r *http.Request) {
	var (
		err     error
		files   []models.UploadFile
		cleanup func()
		jobID   string
	)

	state := dashboardState{clientFilter: clientFilter(r), selection: models.NewSelection()}

	if err = r.ParseMultipartForm(32 << 20); err != nil {
		slog.Error("error parsing upload form", "error", err)
		state.isError = true
		state.message = "The upload could not be read."
		c.renderDashboard(w, r, state)
		return
	}

	clientSlug := models.NormalizeSlug(r.FormValue("clientSlug"))
	album := r.FormValue("album")

	if clientSlug == "" {
		state.isWarning = true
		state.message = "Enter the client code."
		c.renderDashboard(w, r, state)
		return
	}

	if files, cleanup, err = c.spooler.Spool(r.MultipartForm.File["files"]); err != nil {
		slog.Error("error spooling uploaded files", "error", err)
		state.isError = true
		state.message = "The upload could not be read."
		c.renderDashboard(w, r, state)
		return
	}

	request := services.UploadRequest{
		Album:      album,
		ClientSlug: clientSlug,
		Files:      files,
		Cleanup:    cleanup,
	}

	if jobID, err = c.uploadJobService.Start(request); err != nil {
		state.isWarning = true

		switch {
		case errors.Is(err, services.ErrNoFiles):
			state.message = "Select at least one photo!"
		case errors.Is(err, services.ErrUnknownAlbum):
			state.message = "Pick one of the listed albums."
		default:
			state.message = err.Error()
		}

		c.renderDashboard(w, r, state)
		return
	}

	slog.Info("upload job started", "jobID", jobID, "clientSlug", clientSlug, "files", len(files))
	http.Redirect(w, r, "/admin/uploads/"+jobID, http.StatusSeeOther)
}

/*
GET /admin/uploads/{id}
*/
func (c AdminController) UploadProgressPage(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")
	job, ok := c.uploadJobService.Get(id)

	if !ok {
		httphelpers.WriteText(w, http.StatusNotFound, "upload not found")
		return
	}

	viewData := viewmodels.UploadProgress{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx:    httphelpers.IsHtmx(r),
			Message:   job.Message,
			IsError:   job.Status == models.UploadJobFailed,
			IsWarning: job.Status == models.UploadJobPartial,
		},
		Job:     job,
		Percent: job.Progress.Percent(),
	}

	c.renderer.Render("pages/admin/upload-progress", viewData, w)
}

/*
POST /admin/photos/order
*/
func (c AdminController) ReorderAction(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	filter := clientFilter(r)

	c.reorder(w, r, filter, func(ctx context.Context, current []*models.Photo) (services.ReorderOutcome, error) {
		return c.reorderService.ApplyOrder(ctx, current, r.Form["id"], c.reloadFunc(filter))
	})
}

/*
POST /admin/photos/move
*/
func (c AdminController) MoveAction(w http.ResponseWriter, r *http.Request) {
	filter := clientFilter(r)
	activeID := httphelpers.GetFromRequest[string](r, "activeId")
	overID := httphelpers.GetFromRequest[string](r, "overId")

	c.reorder(w, r, filter, func(ctx context.Context, current []*models.Photo) (services.ReorderOutcome, error) {
		return c.reorderService.Move(ctx, current, activeID, overID, c.reloadFunc(filter))
	})
}

func (c AdminController) reorder(w http.ResponseWriter, r *http.Request, filter string, fn func(ctx context.Context, current []*models.Photo) (services.ReorderOutcome, error)) {
	_ = r.ParseForm()
	state := dashboardState{clientFilter: filter, selection: models.NewSelection(r.Form["selected"]...)}
	current, err := c.loadPhotos(r.Context(), filter)

	if err != nil {
		slog.Error("error loading photos for reorder", "error", err)
		state.isError = true
		state.message = "An unexpected error occurred while loading photos."
		c.renderDashboard(w, r, state)
		return
	}

	outcome, err := fn(r.Context(), current)

	if err != nil {
		slog.Error("error reordering photos", "error", err)
		state.isError = true
		state.message = "Error saving the order. Refresh the page."
		c.renderDashboard(w, r, state)
		return
	}

	state.photos = outcome.Photos

	if outcome.Reconciled {
		state.isWarning = true
		state.message = outcome.Warning
	}

	c.renderDashboard(w, r, state)
}

/*
POST /admin/photos/select-all
*/
func (c AdminController) SelectAllAction(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	filter := clientFilter(r)
	selection := models.NewSelection(r.Form["selected"]...)
	state := dashboardState{clientFilter: filter, selection: selection}

	photos, err := c.loadPhotos(r.Context(), filter)

	if err != nil {
		slog.Error("error loading photos for selection", "error", err)
		state.isError = true
		state.message = "An unexpected error occurred while loading photos."
		c.renderDashboard(w, r, state)
		return
	}

	selection.ToggleAll(models.PhotoIDs(photos))
	state.photos = photos
	c.renderDashboard(w, r, state)
}

/*
POST /admin/photos/delete-selected
*/
func (c AdminController) DeleteSelectedAction(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	selection := models.NewSelection(r.Form["selected"]...)
	state := dashboardState{clientFilter: clientFilter(r), selection: selection}

	deleted, err := c.deleteService.DeleteSelected(r.Context(), selection)

	if err != nil {
		slog.Error("error deleting selected photos", "error", err, "count", selection.Len())
		state.isError = true
		state.message = "Error deleting the selected photos."
		c.renderDashboard(w, r, state)
		return
	}

	selection.Clear()
	state.message = fmt.Sprintf("Deleted %d photos.", deleted)
	c.renderDashboard(w, r, state)
}

/*
POST /admin/photos/delete-all
*/
func (c AdminController) DeleteAllAction(w http.ResponseWriter, r *http.Request) {
	state := dashboardState{clientFilter: clientFilter(r), selection: models.NewSelection()}
	deleted, err := c.deleteService.DeleteAll(r.Context())

	if err != nil {
		slog.Error("error deleting all photos", "error", err, "deleted", deleted)
		state.isError = true
		state.message = fmt.Sprintf("Deleted %d photos, some could not be deleted.", deleted)
		c.renderDashboard(w, r, state)
		return
	}

	state.message = "All photos deleted!"
	c.renderDashboard(w, r, state)
}

/*
DELETE /admin/photos/{id}
*/
func (c AdminController) DeletePhotoAction(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")

	if err := c.deleteService.DeleteOne(r.Context(), id); err != nil {
		slog.Error("error deleting photo", "error", err, "photoID", id)
		httphelpers.TextInternalServerError(w, "Error deleting photo")
		return
	}

	httphelpers.TextOK(w, "")
}

/*
POST /admin/header
*/
func (c AdminController) SaveHeaderAction(w http.ResponseWriter, r *http.Request) {
	state := dashboardState{clientFilter: clientFilter(r), selection: models.NewSelection()}

	header, err := c.settingsService.SaveHeader(
		r.Context(),
		httphelpers.GetFromRequest[string](r, "title"),
		httphelpers.GetFromRequest[string](r, "backgroundUrl"),
	)

	if err != nil {
		slog.Error("error saving header settings", "error", err)
		state.isError = true
		state.message = "Error saving the header."
		c.renderDashboard(w, r, state)
		return
	}

	state.header = &header
	state.message = "Header updated."
	c.renderDashboard(w, r, state)
}

/*
POST /admin/header/background

The uploaded background is shown in the form but only saved with the
rest of the header.
*/
func (c AdminController) UploadHeaderBackgroundAction(w http.ResponseWriter, r *http.Request) {
	state := dashboardState{clientFilter: clientFilter(r), selection: models.NewSelection()}

	header, err := c.settingsService.GetHeader(r.Context())

	if err != nil {
		slog.Error("error getting header settings", "error", err)
	}

	header.Title = r.FormValue("title")
	state.header = &header

	file, fileHeader, err := r.FormFile("file")

	if err != nil {
		state.isWarning = true
		state.message = "Choose a background image."
		c.renderDashboard(w, r, state)
		return
	}

	_ = file.Close()

	url, err := c.uploader.Upload(r.Context(), models.UploadFile{
		Name: fileHeader.Filename,
		Size: fileHeader.Size,
		Open: openFileHeader(fileHeader),
	})

	if err != nil {
		slog.Error("error uploading header background", "error", err)
		state.isError = true
		state.message = "Error uploading the background."
		c.renderDashboard(w, r, state)
		return
	}

	header.BackgroundURL = url
	state.message = "Background uploaded! Don't forget to save the header."
	c.renderDashboard(w, r, state)
}

func (c AdminController) renderDashboard(w http.ResponseWriter, r *http.Request, state dashboardState) {
	var (
		err error
	)

	viewData := viewmodels.AdminDashboard{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx:    httphelpers.IsHtmx(r),
			Message:   state.message,
			IsError:   state.isError,
			IsWarning: state.isWarning,
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/admin.js"},
			},
		},
		Admin:          viewmodels.GetAdminFromContext(r),
		ClientFilter:   state.clientFilter,
		Albums:         models.Albums,
		ParallelUpload: c.maxParallelUploads,
	}

	if state.header != nil {
		viewData.Header = *state.header
	} else if viewData.Header, err = c.settingsService.GetHeader(r.Context()); err != nil {
		slog.Error("error getting header settings", "error", err)
	}

	photos := state.photos

	if photos == nil {
		if photos, err = c.loadPhotos(r.Context(), state.clientFilter); err != nil {
			slog.Error("error loading photos for dashboard", "error", err)
			viewData.IsError = true
			viewData.Message = "An unexpected error occurred while loading photos."
		}
	}

	viewData.Photos = viewmodels.ToGalleryPhotos(photos, state.selection)
	viewData.SelectedCount = state.selection.Len()
	viewData.AllSelected = len(photos) > 0 && state.selection.ContainsAll(models.PhotoIDs(photos))

	c.renderer.Render("pages/admin/dashboard", viewData, w)
}

func (c AdminController) loadPhotos(ctx context.Context, filter string) ([]*models.Photo, error) {
	var (
		err    error
		photos []*models.Photo
	)

	if filter == "" {
		photos, err = c.photoService.GetAll(ctx)
	} else {
		photos, err = c.photoService.GetByClient(ctx, filter)
	}

	if err != nil {
		return nil, err
	}

	models.SortPhotos(photos)
	return photos, nil
}

func (c AdminController) reloadFunc(filter string) services.ReloadFunc {
	return func(ctx context.Context) ([]*models.Photo, error) {
		return c.loadPhotos(ctx, filter)
	}
}

func clientFilter(r *http.Request) string {
	return models.NormalizeSlug(httphelpers.GetFromRequest[string](r, "client"))
}

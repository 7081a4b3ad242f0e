package adminaccess

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/weddinggallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/weddinggallery/pkg/identity"
	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/adampresley/weddinggallery/pkg/services"
)

type AdminAccessControllerConfig struct {
	AuthService    services.AdminAuthServicer
	Renderer       rendering.TemplateRenderer
	SessionService sessions.Session[*models.Admin]
}

type AdminAccessController struct {
	authService    services.AdminAuthServicer
	renderer       rendering.TemplateRenderer
	sessionService sessions.Session[*models.Admin]
}

func NewAdminAccessController(config AdminAccessControllerConfig) AdminAccessController {
	return AdminAccessController{
		authService:    config.AuthService,
		renderer:       config.Renderer,
		sessionService: config.SessionService,
	}
}

/*
GET /admin/login
*/
func (c AdminAccessController) LoginPage(w http.ResponseWriter, r *http.Request) {
	viewData := viewmodels.AdminLogin{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
	}

	c.renderer.Render("pages/admin/login", viewData, w)
}

/*
POST /admin/login
*/
func (c AdminAccessController) LoginAction(w http.ResponseWriter, r *http.Request) {
	var (
		err        error
		admin      *models.Admin
		loginError *services.LoginError
	)

	pageName := "pages/admin/login"

	viewData := viewmodels.AdminLogin{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
		Email: httphelpers.GetFromRequest[string](r, "email"),
	}

	password := httphelpers.GetFromRequest[string](r, "password")
	admin, err = c.authService.SignIn(r.Context(), throttleKey(r), viewData.Email, password)

	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoginLocked):
			viewData.IsError = true
			viewData.Blocked = true
			viewData.Message = "Too many sign-in attempts. Please wait and try again."

			if errors.As(err, &loginError) && loginError.RetryAfter > 0 {
				minutes := int(math.Ceil(loginError.RetryAfter.Minutes()))
				viewData.Message = fmt.Sprintf("Too many sign-in attempts. Please wait %d minute(s).", minutes)
			}

		case errors.Is(err, identity.ErrInvalidCredentials):
			viewData.IsWarning = true
			viewData.Message = "Incorrect email or password."

			if errors.As(err, &loginError) {
				viewData.Message = fmt.Sprintf("Incorrect email or password (attempt %d/%d).", loginError.Attempts, loginError.MaxAttempts)
			}

		default:
			slog.Error("error signing in admin", "error", err)
			viewData.IsError = true
			viewData.Message = "An unexpected error occurred. Please try again."
		}

		c.renderer.Render(pageName, viewData, w)
		return
	}

	/*
	 * Setup the session and redirect to the dashboard
	 */
	if err = c.sessionService.Set(r, admin); err != nil {
		slog.Error("error setting admin session", "error", err)
	}

	if err = c.sessionService.Save(w, r); err != nil {
		slog.Error("error saving session", "error", err)
	}

	slog.Info("admin signed in", "email", admin.Email)
	http.Redirect(w, r, "/admin", http.StatusFound)
}

/*
GET /admin/logout
*/
func (c AdminAccessController) LogoutAction(w http.ResponseWriter, r *http.Request) {
	_ = c.sessionService.Destroy(w, r)
	_ = c.sessionService.Save(w, r)
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

func throttleKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)

	if err != nil {
		return r.RemoteAddr
	}

	return host
}

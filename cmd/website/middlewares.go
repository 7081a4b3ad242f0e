package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/weddinggallery/pkg/models"
)

func newAdminAccessMiddleware(sessionService sessions.Session[*models.Admin], excludedPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				err          error
				sessionAdmin *models.Admin
			)

			path := r.URL.Path

			/*
			 * If this path is excluded, keep going.
			 */
			for _, excludedPath := range excludedPaths {
				if strings.HasPrefix(path, excludedPath) {
					next.ServeHTTP(w, r)
					return
				}
			}

			if sessionAdmin, err = sessionService.Get(r); err != nil || sessionAdmin == nil || sessionAdmin.UID == "" {
				if httphelpers.IsHtmx(r) {
					w.Header().Set("HX-Redirect", "/admin/login")
					w.WriteHeader(http.StatusUnauthorized)
					return
				}

				http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), "admin", sessionAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

/*
newRequestSizeMiddleware rejects bodies larger than maxBytes and caps
the reader for requests that do not announce their length.
*/
func newRequestSizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httphelpers.WriteText(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

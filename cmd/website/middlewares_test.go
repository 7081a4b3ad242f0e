package main

import (
	"encoding/gob"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/weddinggallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService() sessions.Session[*models.Admin] {
	gob.Register(&models.Admin{})
	store := sessions.NewCookieStore("0123456789abcdef0123456789abcdef")
	return sessions.NewSessionWrapper[*models.Admin](store, "weddinggalleryadmin", "admin")
}

func TestAdminAccessMiddleware(t *testing.T) {
	sessionService := newTestSessionService()

	var seen *models.Admin

	handler := newAdminAccessMiddleware(sessionService, []string{"/admin/login"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = viewmodels.GetAdminFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no session redirects to login", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin/login", w.Header().Get("Location"))
	})

	t.Run("htmx request without session gets HX-Redirect", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/admin/photos/order", nil)
		r.Header.Set("HX-Request", "true")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "/admin/login", w.Header().Get("HX-Redirect"))
	})

	t.Run("excluded path passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/login", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("signed in admin reaches the handler", func(t *testing.T) {
		login := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		loginResponse := httptest.NewRecorder()

		require.NoError(t, sessionService.Set(login, &models.Admin{UID: "u-1", Email: "admin@example.com"}))
		require.NoError(t, sessionService.Save(loginResponse, login))

		r := httptest.NewRequest(http.MethodGet, "/admin", nil)

		for _, cookie := range loginResponse.Result().Cookies() {
			r.AddCookie(cookie)
		}

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u-1", seen.UID)
	})
}

func TestRequestSizeMiddleware(t *testing.T) {
	handler := newRequestSizeMiddleware(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}

		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name          string
		body          string
		contentLength int64
		want          int
	}{
		{name: "small body", body: "12345", contentLength: 5, want: http.StatusOK},
		{name: "declared too large", body: strings.Repeat("x", 20), contentLength: 20, want: http.StatusRequestEntityTooLarge},
		{name: "undeclared too large", body: strings.Repeat("x", 20), contentLength: -1, want: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/admin/uploads", strings.NewReader(tt.body))
			r.ContentLength = tt.contentLength
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

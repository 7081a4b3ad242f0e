package models

import (
	"fmt"
	"strings"
)

const (
	DefaultClientSlug = "public"
)

var (
	ErrPhotoNotFound = fmt.Errorf("photo not found")
)

// NormalizeSlug trims and lower-cases a client slug.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

/*
ResolveClientSlug is used by the public gallery. A missing or blank
query value resolves to the public gallery.
*/
func ResolveClientSlug(raw string) string {
	slug := NormalizeSlug(raw)

	if slug == "" {
		return DefaultClientSlug
	}

	return slug
}

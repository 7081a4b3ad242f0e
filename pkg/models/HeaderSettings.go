package models

const (
	DefaultHeaderTitle = "Wedding Videographer"
)

type HeaderSettings struct {
	Title         string `db:"title"`
	BackgroundURL string `db:"background_url"`
	UpdatedAt     int64  `db:"updated_at"`
}

package models

// Admin is the signed-in operator stored in the session.
type Admin struct {
	UID   string
	Email string
}

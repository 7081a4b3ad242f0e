package viewmodels

type AdminLogin struct {
	BaseViewModel

	Email   string
	Blocked bool
}

package adminaccess

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThrottleKey(t *testing.T) {
	r := httptest.NewRequest("POST", "/admin/login", nil)

	r.RemoteAddr = "203.0.113.7:54321"
	assert.Equal(t, "203.0.113.7", throttleKey(r))

	r.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", throttleKey(r))

	r.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", throttleKey(r))
}

package services

import (
	"testing"

	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestEmailService_Enabled(t *testing.T) {
	tests := []struct {
		name   string
		config EmailServiceConfig
		want   bool
	}{
		{name: "no key", config: EmailServiceConfig{ToEmail: "a@example.com"}, want: false},
		{name: "no recipient", config: EmailServiceConfig{ApiKey: "key"}, want: false},
		{name: "configured", config: EmailServiceConfig{ApiKey: "key", ToEmail: "a@example.com"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewEmailService(tt.config).Enabled())
		})
	}
}

func TestEmailService_NotifyUploadFinishedDisabledIsNoop(t *testing.T) {
	s := NewEmailService(EmailServiceConfig{})

	err := s.NotifyUploadFinished(models.UploadJob{ClientSlug: "jones", Status: models.UploadJobCommitted})

	assert.NoError(t, err)
}

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/3leaps/splunkmcp/internal/config"
)

func TestAuthMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "token configured",
			cfg:  config.Config{Splunk: config.SplunkConfig{Token: "abc"}},
			want: "token",
		},
		{
			name: "username and password",
			cfg:  config.Config{Splunk: config.SplunkConfig{Username: "admin", Password: "secret"}},
			want: "session",
		},
		{
			name: "token wins when both present",
			cfg:  config.Config{Splunk: config.SplunkConfig{Token: "abc", Username: "admin"}},
			want: "token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := authMode(&tt.cfg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDoctorHelpTextDoesNotPanic(t *testing.T) {
	cfg := &config.Config{Splunk: config.SplunkConfig{Host: "splunk.example.com", Port: 8089}}

	assert.NotPanics(t, func() {
		printConfigHelp()
		printAuthHelp()
		printConnectionHelp(cfg)
	})
}

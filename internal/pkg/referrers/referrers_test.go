package referrers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"linkdeck/internal/pkg/referrers"
)

func TestFriendlyName(t *testing.T) {
	tests := []struct {
		hostname string
		expected string
	}{
		{"instagram.com", "Instagram"},
		{"l.instagram.com", "Instagram"},
		{"vm.tiktok.com", "TikTok"},
		{"t.co", "X/Twitter"},
		{"wa.me", "WhatsApp"},

		// www prefix stripped
		{"www.instagram.com", "Instagram"},
		{"www.reddit.com", "Reddit"},

		// subdomains inherit the parent
		{"m.facebook.com", "Facebook"},
		{"mobile.twitter.com", "X/Twitter"},

		// country-code google domains fold into one source
		{"google.com", "Google"},
		{"google.de", "Google"},
		{"google.co.uk", "Google"},
		{"google.com.br", "Google"},

		// unknown hostnames get capitalized
		{"example.com", "Example.com"},
		{"www.example.com", "Example.com"},
		{"myblog.io", "Myblog.io"},

		// case insensitive
		{"INSTAGRAM.COM", "Instagram"},
		{"Vm.TikTok.Com", "TikTok"},
	}

	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			assert.Equal(t, tt.expected, referrers.FriendlyName(tt.hostname))
		})
	}
}

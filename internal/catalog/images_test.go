package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsImageURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"books host", "http://books.google.com/books/content?id=abc&printsec=frontcover", true},
		{"content subdomain", "https://books.googleusercontent.com/books/content?id=abc", true},
		{"upper case host", "https://Books.Google.com/x.jpg", true},
		{"loopback", "http://127.0.0.1:6379/x", false},
		{"metadata endpoint", "http://169.254.169.254/latest/meta-data/", false},
		{"lookalike suffix", "https://books.google.com.evil.test/x.jpg", false},
		{"bare parent of wildcard", "https://googleusercontent.com/x.jpg", false},
		{"userinfo", "https://attacker@books.google.com/x.jpg", false},
		{"file scheme", "file:///etc/passwd", false},
		{"relative", "/covers/x.jpg", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsImageURL(tt.url, ImageHosts))
		})
	}
}

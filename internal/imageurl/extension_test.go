package imageurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := NewResolver([]string{".jpg", ".png"}, ".jpg")

	tests := []struct {
		url       string
		ext       string
		defaulted bool
	}{
		{"https://x.test/img.jpg", ".jpg", false},
		{"https://x.test/img.PNG", ".png", false},
		{"https://x.test/a/b/photo.png?w=200#top", ".png", false},
		{"https://x.test/img.gif", ".jpg", true},
		{"https://x.test/img", ".jpg", true},
		{"https://x.test/dir.d/img", ".jpg", true},
		{"https://x.test/img.jpeg", ".jpg", true},
		{"https://x.test/render?file=a.png", ".jpg", true},
		{"://bad url", ".jpg", true},
		{"", ".jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			ext, defaulted := r.Resolve(tt.url)
			assert.Equal(t, tt.ext, ext)
			assert.Equal(t, tt.defaulted, defaulted)
		})
	}
}

func TestResolve_JPEGVariant(t *testing.T) {
	r := NewResolver([]string{".jpg", ".jpeg", ".png"}, ".jpg")

	ext, defaulted := r.Resolve("https://x.test/img.jpeg")
	assert.Equal(t, ".jpeg", ext)
	assert.False(t, defaulted)
}

func TestResolve_Idempotent(t *testing.T) {
	r := NewResolver([]string{".jpg", ".png"}, ".jpg")

	for _, u := range []string{"https://x.test/img.gif", "https://x.test/img.png", "https://x.test/"} {
		ext1, d1 := r.Resolve(u)
		ext2, d2 := r.Resolve(u)
		assert.Equal(t, ext1, ext2, u)
		assert.Equal(t, d1, d2, u)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".webp", Extension("https://cdn.test/x/y.WEBP"))
	assert.Equal(t, "", Extension("https://cdn.test/x/y"))
}

package hls

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSetsFields(t *testing.T) {
	dl := New(&http.Client{}, "best", 4)
	assert.Equal(t, "best", dl.quality)
	assert.Equal(t, 4, dl.threads)
}

func TestSetBaseURL(t *testing.T) {
	dl := New(&http.Client{}, "best", 1)
	dl.SetBaseURL("https://example.com/")
	assert.Equal(t, "https://example.com/", dl.baseURL)
}

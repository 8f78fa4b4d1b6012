package web

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedImageMIME(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		wantMIME     string
		wantDetected bool
	}{
		{
			name:         "JPEG",
			data:         []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10},
			wantMIME:     "image/jpeg",
			wantDetected: true,
		},
		{
			name:         "PNG",
			data:         []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00},
			wantMIME:     "image/png",
			wantDetected: true,
		},
		{
			name:         "GIF",
			data:         []byte("GIF89a"),
			wantMIME:     "image/gif",
			wantDetected: true,
		},
		{
			name:         "WebP",
			data:         append([]byte("RIFF\x00\x00\x00\x00WEBP"), make([]byte, 10)...),
			wantMIME:     "image/webp",
			wantDetected: true,
		},
		{
			name:         "RIFF but not WebP",
			data:         append([]byte("RIFF\x00\x00\x00\x00WAVE"), make([]byte, 10)...),
			wantMIME:     "",
			wantDetected: false,
		},
		{
			name:         "PDF disguised as image",
			data:         []byte("%PDF-1.4 malicious content"),
			wantMIME:     "",
			wantDetected: false,
		},
		{
			name:         "empty",
			data:         []byte{},
			wantMIME:     "",
			wantDetected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMIME, gotDetected := allowedImageMIME(tt.data)
			assert.Equal(t, tt.wantDetected, gotDetected)
			assert.Equal(t, tt.wantMIME, gotMIME)
		})
	}
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestValidateImageURI(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00")

	tests := []struct {
		name    string
		uri     string
		wantErr string
	}{
		{name: "valid gif", uri: dataURI("image/gif", gif)},
		{name: "remote url", uri: "https://example.com/a.gif", wantErr: "not a data URI"},
		{name: "no comma", uri: "data:image/gif;base64", wantErr: "malformed"},
		{name: "not base64", uri: "data:image/gif," + string(gif), wantErr: "not base64"},
		{name: "bad base64", uri: "data:image/gif;base64,@@@", wantErr: "invalid base64"},
		{name: "declared type mismatch", uri: dataURI("image/png", gif), wantErr: "does not match"},
		{name: "not an image", uri: dataURI("image/gif", []byte("plain text")), wantErr: "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateImageURI(tt.uri)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateImages(t *testing.T) {
	gif := dataURI("image/gif", []byte("GIF87a\x01\x00"))

	assert.NoError(t, validateImages(nil))
	assert.NoError(t, validateImages([]string{gif, gif}))

	err := validateImages([]string{gif, "nope"})
	if assert.Error(t, err) {
		assert.True(t, strings.HasPrefix(err.Error(), "image 2:"), err.Error())
	}

	tooMany := make([]string, maxImages+1)
	for i := range tooMany {
		tooMany[i] = gif
	}
	assert.Error(t, validateImages(tooMany))
}

package web

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// maxImages caps how many photos a single item may carry.
const maxImages = 10

// allowedImageTypes is the set of MIME types accepted for item photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// validateImageURI checks that uri is a base64 data URI whose payload is an
// accepted image. The declared media type must match the sniffed one.
func validateImageURI(uri string) error {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return fmt.Errorf("image is not a data URI")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return fmt.Errorf("malformed data URI")
	}
	declared, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return fmt.Errorf("data URI is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("invalid base64 image: %w", err)
	}

	mime, ok := allowedImageMIME(data)
	if !ok {
		return fmt.Errorf("unsupported image format")
	}
	if declared != mime {
		return fmt.Errorf("declared type %q does not match %q", declared, mime)
	}
	return nil
}

func validateImages(images []string) error {
	if len(images) > maxImages {
		return fmt.Errorf("at most %d images allowed", maxImages)
	}
	for i, uri := range images {
		if err := validateImageURI(uri); err != nil {
			return fmt.Errorf("image %d: %w", i+1, err)
		}
	}
	return nil
}

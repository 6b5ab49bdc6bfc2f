package llm

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"unicode"
)

// NormalizeImageDataURI accepts a data URI or raw base64 image and
// returns a well-formed data URI suitable for an image_url block.
// Raw base64 is decoded once to validate it and sniff the MIME type.
func NormalizeImageDataURI(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty image")
	}
	if strings.HasPrefix(s, "data:") {
		if !strings.Contains(s, ";base64,") {
			return "", fmt.Errorf("image data URI is not base64-encoded")
		}
		return s, nil
	}

	// Clients commonly send base64 wrapped at 76 columns or with
	// stray whitespace; neither survives strict decoding.
	s = stripWhitespace(s)
	raw, err := decodeBase64(s)
	if err != nil {
		return "", fmt.Errorf("decode image base64: %w", err)
	}
	return "data:" + http.DetectContentType(raw) + ";base64," + s, nil
}

// decodeBase64 tries standard then URL-safe alphabets.
func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

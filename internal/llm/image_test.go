package llm

import (
	"strings"
	"testing"
)

// Base64 of a minimal PNG header, enough for MIME sniffing.
const pngB64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func TestNormalizeImageDataURI(t *testing.T) {
	t.Run("data URI passes through", func(t *testing.T) {
		in := "data:image/jpeg;base64,/9j/4AAQ"
		got, err := NormalizeImageDataURI(in)
		if err != nil {
			t.Fatalf("NormalizeImageDataURI: %v", err)
		}
		if got != in {
			t.Errorf("got %q, want unchanged input", got)
		}
	})

	t.Run("raw base64 gains sniffed prefix", func(t *testing.T) {
		got, err := NormalizeImageDataURI(pngB64)
		if err != nil {
			t.Fatalf("NormalizeImageDataURI: %v", err)
		}
		if !strings.HasPrefix(got, "data:image/png;base64,") {
			t.Errorf("got %q, want image/png data URI", got)
		}
		if !strings.HasSuffix(got, pngB64) {
			t.Errorf("payload was altered")
		}
	})

	t.Run("raw base64 with line wrapping", func(t *testing.T) {
		wrapped := pngB64[:40] + "\r\n" + pngB64[40:80] + "\n  " + pngB64[80:]
		got, err := NormalizeImageDataURI(wrapped)
		if err != nil {
			t.Fatalf("NormalizeImageDataURI: %v", err)
		}
		if !strings.HasPrefix(got, "data:image/png;base64,") {
			t.Errorf("got %q, want image/png data URI", got)
		}
		if !strings.HasSuffix(got, pngB64) {
			t.Errorf("whitespace not stripped from payload: %q", got)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		if _, err := NormalizeImageDataURI("  "); err == nil {
			t.Error("expected error for empty image")
		}
	})

	t.Run("rejects non-base64 garbage", func(t *testing.T) {
		if _, err := NormalizeImageDataURI("this is not base64!!!"); err == nil {
			t.Error("expected error for invalid base64")
		}
	})

	t.Run("rejects non-base64 data URI", func(t *testing.T) {
		if _, err := NormalizeImageDataURI("data:image/png,rawbytes"); err == nil {
			t.Error("expected error for non-base64 data URI")
		}
	})
}

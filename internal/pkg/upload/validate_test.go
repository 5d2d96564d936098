package upload

import (
	"testing"
)

// Minimal valid file headers for content sniffing.
var (
	pngHead  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	jpegHead = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
	webpHead = append([]byte("RIFF\x00\x00\x00\x00WEBPVP8 "), make([]byte, 8)...)
)

func TestValidateScreenshotBySniffAccepts(t *testing.T) {
	tests := []struct {
		filename string
		head     []byte
		wantMime string
	}{
		{filename: "shot.png", head: pngHead, wantMime: "image/png"},
		{filename: "shot.PNG", head: pngHead, wantMime: "image/png"},
		{filename: "shot.jpg", head: jpegHead, wantMime: "image/jpeg"},
		{filename: "shot.jpeg", head: jpegHead, wantMime: "image/jpeg"},
		{filename: "shot.webp", head: webpHead, wantMime: "image/webp"},
	}

	for _, tt := range tests {
		mime, err := ValidateScreenshotBySniff(tt.filename, tt.head)
		if err != nil {
			t.Fatalf("ValidateScreenshotBySniff(%q) unexpected error: %v", tt.filename, err)
		}
		if mime != tt.wantMime {
			t.Fatalf("ValidateScreenshotBySniff(%q) = %q, want %q", tt.filename, mime, tt.wantMime)
		}
	}
}

func TestValidateScreenshotBySniffRejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		head     []byte
	}{
		{name: "extension not allowed", filename: "shot.gif", head: pngHead},
		{name: "no extension", filename: "shot", head: pngHead},
		{name: "html masquerading as png", filename: "shot.png", head: []byte("<!DOCTYPE html><html>")},
		{name: "svg masquerading as png", filename: "shot.png", head: []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`)},
		{name: "plain text content", filename: "shot.png", head: []byte("hello world, definitely not an image")},
		{name: "empty file", filename: "shot.png", head: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateScreenshotBySniff(tt.filename, tt.head); err == nil {
				t.Fatalf("expected rejection")
			}
		})
	}
}

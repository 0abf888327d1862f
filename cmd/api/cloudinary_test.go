package main

import (
	"strings"
	"testing"
)

func TestCacheBustedURL(t *testing.T) {
	plain := cacheBustedURL("https://res.cloudinary.com/demo/image/upload/avatars/42.jpg")
	if !strings.Contains(plain, "?v=") {
		t.Errorf("expected ?v= suffix, got %s", plain)
	}

	withQuery := cacheBustedURL("https://res.cloudinary.com/demo/image/upload/avatars/42.jpg?w=300")
	if !strings.Contains(withQuery, "&v=") {
		t.Errorf("expected &v= suffix on URL with existing query, got %s", withQuery)
	}
}

func TestExtractPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "plain delivery URL",
			url:  "https://res.cloudinary.com/demo/image/upload/avatars/42.jpg",
			want: "avatars/42",
		},
		{
			name: "versioned delivery URL",
			url:  "https://res.cloudinary.com/demo/image/upload/v1712345678/venues/7.png",
			want: "venues/7",
		},
		{
			name: "cache busting query ignored",
			url:  "https://res.cloudinary.com/demo/image/upload/venues/7.png?v=1712345678",
			want: "venues/7",
		},
		{
			name:    "no upload segment",
			url:     "https://example.com/images/42.jpg",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractPublicIDFromURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadInt(t *testing.T) {
	if got := readInt("", 20); got != 20 {
		t.Errorf("empty value: got %d, want default 20", got)
	}
	if got := readInt("5", 20); got != 5 {
		t.Errorf("got %d, want 5", got)
	}
	if got := readInt("abc", 20); got != 20 {
		t.Errorf("non-numeric value: got %d, want default 20", got)
	}
	if got := readInt("-3", 20); got != 20 {
		t.Errorf("negative value: got %d, want default 20", got)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// cacheBustedURL appends a version query parameter so clients holding a
// cached copy of a replaced asset pick up the new one.
func cacheBustedURL(secureURL string) string {
	sep := "?"
	if strings.Contains(secureURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sv=%d", secureURL, sep, time.Now().Unix())
}

func (app *application) deletePhotoFromCloudinary(photoURL string) error {
	publicID, err := extractPublicIDFromURL(photoURL)
	if err != nil {
		return fmt.Errorf("failed to extract public ID: %w", err)
	}

	_, err = app.cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo from cloudinary: %w", err)
	}

	return nil
}

// extractPublicIDFromURL recovers the public ID from a Cloudinary
// delivery URL, dropping any cache-busting query string first.
func extractPublicIDFromURL(photoURL string) (string, error) {
	parsedURL, err := url.Parse(photoURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	pathParts := strings.Split(parsedURL.Path, "/")
	for i, part := range pathParts {
		if part == "upload" && i+1 < len(pathParts) {
			idParts := pathParts[i+1:]
			// Delivery URLs carry a version segment (v1712345678)
			// that is not part of the public ID.
			if len(idParts) > 1 && isVersionSegment(idParts[0]) {
				idParts = idParts[1:]
			}
			publicID := strings.Join(idParts, "/")
			// Strip the file extension; Destroy expects the bare ID.
			if dot := strings.LastIndex(publicID, "."); dot > 0 {
				publicID = publicID[:dot]
			}
			return publicID, nil
		}
	}

	return "", errors.New("failed to extract public ID from URL")
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

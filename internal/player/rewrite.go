// Package player rewrites playback URLs into their embeddable form for
// the viewer iframe. Unknown hosts pass through untouched; playback
// itself is delegated to the embedded viewer.
package player

import "strings"

// EmbedURL maps a raw share link to its embed variant:
//
//	youtube.com/watch?v=X      → youtube.com/embed/X
//	youtu.be/X                 → youtube.com/embed/X
//	drive.google.com/.../view  → .../preview
//	drive.google.com/.../edit  → .../preview
func EmbedURL(raw string) string {
	url := raw
	switch {
	case strings.Contains(url, "youtube.com/watch?v="):
		url = strings.Replace(url, "watch?v=", "embed/", 1)
	case strings.Contains(url, "youtu.be/"):
		url = strings.Replace(url, "youtu.be/", "youtube.com/embed/", 1)
	}
	if strings.Contains(url, "drive.google.com") &&
		(strings.Contains(url, "/view") || strings.Contains(url, "/edit")) {
		url = strings.Replace(url, "/view", "/preview", 1)
		url = strings.Replace(url, "/edit", "/preview", 1)
	}
	return url
}

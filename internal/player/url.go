package player

import (
	"net/url"
	"strings"
)

// ExtractVideoID parses the closed set of known YouTube URL shapes (watch
// page, short link, embed path, shorts path) into a video id. It returns ""
// for any unrecognized host or malformed input and never panics.
func ExtractVideoID(raw string) string {
	if raw == "" {
		return ""
	}

	if !strings.HasPrefix(raw, "http") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		path := parsed.EscapedPath()
		switch {
		case strings.HasPrefix(path, "/watch"):
			return parsed.Query().Get("v")
		case strings.HasPrefix(path, "/embed/"):
			return strings.TrimPrefix(path, "/embed/")
		case strings.HasPrefix(path, "/shorts/"):
			return strings.TrimPrefix(path, "/shorts/")
		}
		return ""
	case "youtu.be":
		return strings.TrimPrefix(parsed.EscapedPath(), "/")
	}

	return ""
}

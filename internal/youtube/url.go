// Package youtube derives video identities from YouTube URLs and cleans
// provider text before it is cached.
package youtube

import (
	"net/url"
	"strings"
)

// ExtractVideoID returns the video id referenced by a YouTube watch or
// short link. Query parameters other than v are ignored.
func ExtractVideoID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}

	var id string
	switch strings.ToLower(u.Hostname()) {
	case "youtu.be":
		id = strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		id = u.Query().Get("v")
	default:
		return "", false
	}

	if id == "" {
		return "", false
	}
	return id, true
}

// WatchURL builds the canonical watch URL for a video id
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
}

// StorageKey identifies a transcript in the cache. An empty session id is
// treated as absent.
func StorageKey(videoID, sessionID string) string {
	if sessionID == "" {
		return videoID
	}
	return videoID + "_" + sessionID
}

// DefaultTitle is used when the provider returns no title
func DefaultTitle(videoID string) string {
	return "YouTube Video (" + videoID + ")"
}

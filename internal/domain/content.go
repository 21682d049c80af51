package domain

import (
	"net/url"
	"strings"
)

// ContentKind represents the kind of content a URL resolves to
type ContentKind string

const (
	KindVideo    ContentKind = "video"
	KindPlaylist ContentKind = "playlist"
	KindChannel  ContentKind = "channel"
)

// ContentInfo is the result of classifying a URL. Metadata holds whatever
// the extractor reported; it is empty when classification fell back to
// URL-pattern matching.
type ContentInfo struct {
	Kind     ContentKind
	Metadata map[string]interface{}
}

// ResultKind tags the shape of an extraction result
type ResultKind int

const (
	// ResultEmpty means the extractor ran cleanly but produced nothing
	// (private or unavailable content). Never retried.
	ResultEmpty ResultKind = iota
	// ResultSingle is a single downloaded item
	ResultSingle
	// ResultMulti is an expanded playlist or channel
	ResultMulti
)

// ExtractEntry is one item of a multi-item extraction result
type ExtractEntry struct {
	ID    string
	Title string
}

// ExtractResult is the decoded outcome of one extractor call. The raw
// shapes the extractor emits (null, playlist mapping, flat item) are
// decoded into this variant exactly once, at the collaborator boundary.
type ExtractResult struct {
	Kind    ResultKind
	Title   string
	Entries []ExtractEntry
}

// ItemCount returns the number of files the result represents
func (r *ExtractResult) ItemCount() int {
	switch r.Kind {
	case ResultSingle:
		return 1
	case ResultMulti:
		return len(r.Entries)
	default:
		return 0
	}
}

var channelPathMarkers = []string{"/@", "/channel/", "/c/", "/user/"}

// IsChannelURL reports whether the URL path matches a channel pattern.
// Channels are represented as playlists by the extractor, so URL shape is
// the only way to tell them apart.
func IsChannelURL(rawURL string) bool {
	for _, marker := range channelPathMarkers {
		if strings.Contains(rawURL, marker) {
			return true
		}
	}
	return false
}

// GuessKindFromURL classifies a URL purely by its shape. It always
// produces a kind, defaulting to video.
func GuessKindFromURL(rawURL string) ContentKind {
	if IsChannelURL(rawURL) {
		return KindChannel
	}

	if parsed, err := url.Parse(rawURL); err == nil {
		if parsed.Query().Has("list") {
			return KindPlaylist
		}
	}

	return KindVideo
}

// IsSupportedURL checks that a URL points at a host this tool can handle
func IsSupportedURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	switch strings.ToLower(parsed.Host) {
	case "youtube.com", "www.youtube.com", "m.youtube.com", "youtu.be":
		return true
	default:
		return false
	}
}

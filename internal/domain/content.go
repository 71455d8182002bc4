package domain

import (
	"fmt"
	"strings"
	"time"
)

type MediaType int

const (
	MediaPhoto MediaType = 1
	MediaVideo MediaType = 2
	MediaAlbum MediaType = 8
)

func (t MediaType) String() string {
	switch t {
	case MediaPhoto:
		return "photo"
	case MediaVideo:
		return "video"
	case MediaAlbum:
		return "album"
	default:
		return fmt.Sprintf("media(%d)", int(t))
	}
}

func ParseMediaType(raw string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "photo", "image", "1":
		return MediaPhoto, nil
	case "video", "reel", "2":
		return MediaVideo, nil
	case "album", "carousel", "8":
		return MediaAlbum, nil
	default:
		return 0, fmt.Errorf("unsupported media type %q", raw)
	}
}

// ContentItem is the subset of remote media fields the core consumes.
type ContentItem struct {
	ID           string    `json:"id"`
	Code         string    `json:"code,omitempty"`
	CaptionText  string    `json:"caption_text"`
	MediaType    MediaType `json:"media_type"`
	ThumbnailRef string    `json:"thumbnail_ref,omitempty"`
	ViewCount    int64     `json:"view_count,omitempty"`
	TakenAt      time.Time `json:"taken_at,omitempty"`
	LocalPath    string    `json:"-"`
}

func (c ContentItem) Caption() string {
	return strings.TrimSpace(c.CaptionText)
}

type UploadResult struct {
	ID   string
	Code string
}

// MediaStatus pairs a main-account item with the alts that already carry it.
type MediaStatus struct {
	Item       ContentItem
	RepostedTo []string
}

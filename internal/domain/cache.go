package domain

import (
	"regexp"
	"time"
)

var originalIDPattern = regexp.MustCompile(`ID:(\d+)`)

// CacheEntry holds fingerprints of an alt account's recent content. Entries
// are treated as immutable once published; updates build a new entry.
type CacheEntry struct {
	Captions        map[string]struct{}
	ContentIDs      map[string]struct{}
	OriginalIDs     map[string]struct{}
	ThumbnailRefs   map[string]struct{}
	LastRefreshedAt time.Time
}

func NewCacheEntry(refreshedAt time.Time) CacheEntry {
	return CacheEntry{
		Captions:        map[string]struct{}{},
		ContentIDs:      map[string]struct{}{},
		OriginalIDs:     map[string]struct{}{},
		ThumbnailRefs:   map[string]struct{}{},
		LastRefreshedAt: refreshedAt,
	}
}

func (e CacheEntry) IsEmpty() bool {
	return len(e.Captions) == 0 && len(e.ContentIDs) == 0 && len(e.ThumbnailRefs) == 0
}

func (e CacheEntry) IsStale(now time.Time, ttl time.Duration) bool {
	if e.LastRefreshedAt.IsZero() {
		return true
	}

	return now.Sub(e.LastRefreshedAt) > ttl
}

// Index adds the fingerprints of item to the entry's sets.
func (e CacheEntry) Index(item ContentItem) {
	if caption := item.Caption(); caption != "" {
		e.Captions[caption] = struct{}{}
		for _, match := range originalIDPattern.FindAllStringSubmatch(caption, -1) {
			e.OriginalIDs[match[1]] = struct{}{}
		}
	}
	if item.ID != "" {
		e.ContentIDs[item.ID] = struct{}{}
	}
	if item.ThumbnailRef != "" {
		e.ThumbnailRefs[item.ThumbnailRef] = struct{}{}
	}
}

// With returns a copy of the entry that also indexes item.
func (e CacheEntry) With(item ContentItem) CacheEntry {
	out := NewCacheEntry(e.LastRefreshedAt)
	for _, pair := range []struct{ dst, src map[string]struct{} }{
		{out.Captions, e.Captions},
		{out.ContentIDs, e.ContentIDs},
		{out.OriginalIDs, e.OriginalIDs},
		{out.ThumbnailRefs, e.ThumbnailRefs},
	} {
		for key := range pair.src {
			pair.dst[key] = struct{}{}
		}
	}
	out.Index(item)

	return out
}

type MatchReason string

const (
	MatchNone       MatchReason = ""
	MatchCaption    MatchReason = "caption"
	MatchContentID  MatchReason = "content_id"
	MatchOriginalID MatchReason = "original_id"
	MatchThumbnail  MatchReason = "thumbnail"
	MatchSimilarity MatchReason = "similarity"
)

// Match reports the first fingerprint of item found in the entry, in
// priority order.
func (e CacheEntry) Match(item ContentItem) MatchReason {
	if caption := item.Caption(); caption != "" {
		if _, ok := e.Captions[caption]; ok {
			return MatchCaption
		}
	}
	if item.ID != "" {
		if _, ok := e.ContentIDs[item.ID]; ok {
			return MatchContentID
		}
		if _, ok := e.OriginalIDs[item.ID]; ok {
			return MatchOriginalID
		}
	}
	if item.ThumbnailRef != "" {
		if _, ok := e.ThumbnailRefs[item.ThumbnailRef]; ok {
			return MatchThumbnail
		}
	}

	return MatchNone
}

type CacheSummary struct {
	Username        string
	Items           int
	LastRefreshedAt time.Time
}

package domain

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const shortcodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

var referencePattern = regexp.MustCompile(`instagram\.com/(p|reel|reels|stories|tv)/([^/?#]+)`)

type ReferenceKind string

const (
	ReferencePost  ReferenceKind = "post"
	ReferenceReel  ReferenceKind = "reel"
	ReferenceTV    ReferenceKind = "tv"
	ReferenceStory ReferenceKind = "story"
)

// ContentReference is a parsed shared link.
type ContentReference struct {
	Raw       string
	Kind      ReferenceKind
	Shortcode string
}

func ParseContentReference(raw string) (ContentReference, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "@")
	match := referencePattern.FindStringSubmatch(trimmed)
	if match == nil {
		return ContentReference{}, fmt.Errorf("parse reference %q: not a post, reel or story link", raw)
	}

	ref := ContentReference{Raw: trimmed, Shortcode: match[2]}
	switch match[1] {
	case "p":
		ref.Kind = ReferencePost
	case "reel", "reels":
		ref.Kind = ReferenceReel
	case "tv":
		ref.Kind = ReferenceTV
	default:
		ref.Kind = ReferenceStory
	}

	return ref, nil
}

// MediaID decodes the shortcode into the numeric media id it encodes.
func (r ContentReference) MediaID() (string, error) {
	return ShortcodeToMediaID(r.Shortcode)
}

func ShortcodeToMediaID(shortcode string) (string, error) {
	if shortcode == "" {
		return "", fmt.Errorf("decode shortcode: empty")
	}

	id := new(big.Int)
	base := big.NewInt(int64(len(shortcodeAlphabet)))
	for _, ch := range shortcode {
		index := strings.IndexRune(shortcodeAlphabet, ch)
		if index < 0 {
			return "", fmt.Errorf("decode shortcode %q: invalid character %q", shortcode, ch)
		}
		id.Mul(id, base)
		id.Add(id, big.NewInt(int64(index)))
	}

	return id.String(), nil
}

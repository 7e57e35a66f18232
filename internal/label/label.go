// Package label parses the captions admins attach to uploaded media
// into structured catalog labels.
//
// The caption grammar is deliberately small:
//
//	cover:   #<id> <title>
//	episode: #<id> <title> - Episode <number>
package label

import (
	"errors"
	"fmt"
	"strings"
)

// Kind says what the uploaded media is, which selects the caption grammar.
type Kind string

const (
	KindCover   Kind = "cover"
	KindEpisode Kind = "episode"
)

// episodeSep splits the title from the episode number in episode captions.
const episodeSep = " - Episode "

// ErrBadFormat is returned for any caption the grammar does not accept.
var ErrBadFormat = errors.New("bad label format")

// Label is the parsed form of an upload caption.
type Label struct {
	Kind    Kind
	ID      string // catalog id, the leading #token minus the marker
	Title   string
	Episode string // episode number string, set for KindEpisode only
}

// Parse converts a raw caption into a Label.
//
// Beyond the grammar above, nothing is validated: ids and titles may
// contain anything, and episode numbers are kept as raw strings. Callers
// must not assume further structure. For a cover caption with no text
// after the id, the id itself is used as the title so the result is
// deterministic.
func Parse(caption string, kind Kind) (Label, error) {
	if !strings.HasPrefix(caption, "#") {
		return Label{}, fmt.Errorf("%w: caption must start with #", ErrBadFormat)
	}

	head, rest, _ := strings.Cut(caption, " ")
	id := strings.TrimPrefix(head, "#")
	if id == "" {
		return Label{}, fmt.Errorf("%w: missing catalog id after #", ErrBadFormat)
	}

	switch kind {
	case KindEpisode:
		title, num, found := strings.Cut(rest, episodeSep)
		if !found {
			return Label{}, fmt.Errorf("%w: missing %q separator", ErrBadFormat, episodeSep)
		}
		return Label{
			Kind:    KindEpisode,
			ID:      id,
			Title:   strings.TrimSpace(title),
			Episode: strings.TrimSpace(num),
		}, nil

	case KindCover:
		title := strings.TrimSpace(rest)
		if title == "" {
			title = id
		}
		return Label{Kind: KindCover, ID: id, Title: title}, nil

	default:
		return Label{}, fmt.Errorf("%w: unknown media kind %q", ErrBadFormat, kind)
	}
}

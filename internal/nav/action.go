package nav

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the navigation actions a button can carry.
type Kind int

const (
	KindMenu Kind = iota
	KindSearchPrompt
	KindUploadHelp
	KindList
	KindDrama
	KindEpisode
)

// ErrBadToken is returned when a callback token cannot be decoded.
// Stale or hand-crafted tokens land here; callers render a recoverable
// view, never an error.
var ErrBadToken = errors.New("bad action token")

// Action is the decoded form of a callback token. All pagination and
// targeting state round-trips through it; the server holds no session
// beyond the per-user search flag.
type Action struct {
	Kind    Kind
	ID      string // drama id, for KindDrama and KindEpisode
	Page    int    // for KindList and KindDrama
	Episode string // for KindEpisode
}

// Encode renders the action as a compact token. Telegram caps callback
// data at 64 bytes, so the encoding is a short tag plus fields:
//
//	m | s | u | l:<page> | d:<id>:<page> | e:<id>:<number>
func (a Action) Encode() string {
	switch a.Kind {
	case KindSearchPrompt:
		return "s"
	case KindUploadHelp:
		return "u"
	case KindList:
		return fmt.Sprintf("l:%d", a.Page)
	case KindDrama:
		return fmt.Sprintf("d:%s:%d", a.ID, a.Page)
	case KindEpisode:
		return fmt.Sprintf("e:%s:%s", a.ID, a.Episode)
	default:
		return "m"
	}
}

// Decode parses a callback token back into an Action. Drama ids
// containing ':' cannot round-trip; such tokens decode to a wrong or
// unknown id and surface as a not-found view downstream.
func Decode(token string) (Action, error) {
	tag, rest, _ := strings.Cut(token, ":")
	switch tag {
	case "m":
		return Action{Kind: KindMenu}, nil
	case "s":
		return Action{Kind: KindSearchPrompt}, nil
	case "u":
		return Action{Kind: KindUploadHelp}, nil
	case "l":
		page, err := strconv.Atoi(rest)
		if err != nil {
			return Action{}, fmt.Errorf("%w: list page %q", ErrBadToken, rest)
		}
		return Action{Kind: KindList, Page: page}, nil
	case "d":
		id, pageStr, ok := splitLast(rest)
		if !ok {
			return Action{}, fmt.Errorf("%w: drama token %q", ErrBadToken, token)
		}
		page, err := strconv.Atoi(pageStr)
		if err != nil || id == "" {
			return Action{}, fmt.Errorf("%w: drama token %q", ErrBadToken, token)
		}
		return Action{Kind: KindDrama, ID: id, Page: page}, nil
	case "e":
		id, num, ok := strings.Cut(rest, ":")
		if !ok || id == "" || num == "" {
			return Action{}, fmt.Errorf("%w: episode token %q", ErrBadToken, token)
		}
		return Action{Kind: KindEpisode, ID: id, Episode: num}, nil
	default:
		return Action{}, fmt.Errorf("%w: unknown tag %q", ErrBadToken, tag)
	}
}

// splitLast cuts s at its final ':' so numeric suffixes survive ids
// that happen to contain the separator.
func splitLast(s string) (string, string, bool) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

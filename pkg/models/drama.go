package models

// MediaHandle is an opaque reference to stored media, issued by the
// chat platform (a Telegram file_id). The catalog never inspects it,
// only stores it and hands it back for delivery.
type MediaHandle string

// Drama is one catalog entry: a series keyed by an admin-assigned ID,
// with a display title, an optional cover image, and its episodes
// keyed by episode number.
type Drama struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	Cover    MediaHandle        `json:"cover,omitempty"`
	Episodes map[string]Episode `json:"episodes"`
}

// Episode is one playable unit of a drama. Number is kept as the raw
// string from the label; display ordering sorts it numerically when
// it parses as an integer.
type Episode struct {
	Number string      `json:"number"`
	Media  MediaHandle `json:"media"`
}

// HasCover reports whether a cover image has been ingested for d.
func (d *Drama) HasCover() bool {
	return d.Cover != ""
}

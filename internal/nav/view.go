package nav

import "dramahub/pkg/models"

// Button is one inline control: a label plus the action its token
// carries back.
type Button struct {
	Label  string
	Action Action
}

// View is a transport-neutral screen: message text, an optional cover
// image, and button rows. The transport decides how to deliver it
// (edit in place, or replace when the previous message was media).
type View struct {
	Text    string
	Cover   models.MediaHandle // when set, render as a photo with Text as caption
	Buttons [][]Button
}

// Playback asks the transport to deliver one episode's media before
// presenting the follow-up view.
type Playback struct {
	Media   models.MediaHandle
	Caption string
}

// Response is what one navigation step produces.
type Response struct {
	View     View
	Playback *Playback
}

func row(buttons ...Button) []Button { return buttons }

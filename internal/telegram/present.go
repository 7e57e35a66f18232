package telegram

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dramahub/internal/nav"
)

// messageRef remembers the last view message shown in a chat, and
// whether it was a media message (Telegram cannot edit a media
// message into text or vice versa).
type messageRef struct {
	id    int
	media bool
}

// presenter delivers views with two strategies: edit the previous
// view message in place when it is plain text, otherwise send a new
// message and best-effort delete the old one.
type presenter struct {
	api *tgbotapi.BotAPI
	log *zap.SugaredLogger

	mu   sync.Mutex
	last map[int64]messageRef
}

func newPresenter(api *tgbotapi.BotAPI, log *zap.SugaredLogger) *presenter {
	return &presenter{api: api, log: log, last: make(map[int64]messageRef)}
}

// replace swaps the chat's current view for v, editing in place when
// both old and new are text messages.
func (p *presenter) replace(chatID int64, v nav.View) {
	prev, hasPrev := p.lastRef(chatID)

	if v.Cover == "" && hasPrev && !prev.media {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, prev.id, v.Text, markupFor(v))
		_, err := p.api.Send(edit)
		if err == nil {
			return
		}
		p.log.Debugw("edit failed, replacing", "chat", chatID, "err", err)
	}

	p.send(chatID, v)
	if hasPrev {
		// Best effort: a stale view left behind is cosmetic only.
		if _, err := p.api.Request(tgbotapi.NewDeleteMessage(chatID, prev.id)); err != nil {
			p.log.Debugw("delete old view failed", "chat", chatID, "err", err)
		}
	}
}

// sendNew posts v as a fresh message without touching the previous
// view (used for /start, search results, and post-playback views).
func (p *presenter) sendNew(chatID int64, v nav.View) {
	p.send(chatID, v)
}

func (p *presenter) send(chatID int64, v nav.View) {
	if v.Cover != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(v.Cover))
		photo.Caption = v.Text
		photo.ReplyMarkup = markupFor(v)
		sent, err := p.api.Send(photo)
		if err == nil {
			p.setLast(chatID, messageRef{id: sent.MessageID, media: true})
			return
		}
		// Cover delivery failed (expired file id, etc). Fall back to
		// a plain text view so the user is not left stuck.
		p.log.Warnw("send photo failed, falling back to text", "chat", chatID, "err", err)
	}

	m := tgbotapi.NewMessage(chatID, v.Text)
	m.ReplyMarkup = markupFor(v)
	sent, err := p.api.Send(m)
	if err != nil {
		p.log.Warnw("send view failed", "chat", chatID, "err", err)
		return
	}
	p.setLast(chatID, messageRef{id: sent.MessageID})
}

func (p *presenter) lastRef(chatID int64) (messageRef, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ref, ok := p.last[chatID]
	return ref, ok
}

func (p *presenter) setLast(chatID int64, ref messageRef) {
	p.mu.Lock()
	p.last[chatID] = ref
	p.mu.Unlock()
}

func markupFor(v nav.View) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(v.Buttons))
	for _, r := range v.Buttons {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action.Encode()))
		}
		rows = append(rows, row)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

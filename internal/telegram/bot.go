// Package telegram adapts the catalog core to the Telegram Bot API:
// it routes inbound updates to the navigation engine and the indexing
// pipeline, and delivers their views and playback back to the chat.
package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dramahub/internal/ingest"
	"dramahub/internal/label"
	"dramahub/internal/nav"
	"dramahub/pkg/models"
)

type Bot struct {
	api           *tgbotapi.BotAPI
	engine        *nav.Engine
	pipeline      *ingest.Pipeline
	ingestChannel int64 // 0 = ingestion disabled
	present       *presenter
	log           *zap.SugaredLogger
}

func New(api *tgbotapi.BotAPI, engine *nav.Engine, pipeline *ingest.Pipeline, ingestChannel int64, log *zap.SugaredLogger) *Bot {
	return &Bot{
		api:           api,
		engine:        engine,
		pipeline:      pipeline,
		ingestChannel: ingestChannel,
		present:       newPresenter(api, log),
		log:           log,
	}
}

// Run long-polls for updates until ctx is cancelled. Each update is
// handled on its own goroutine; the catalog store does the locking.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	b.log.Infow("bot started", "username", b.api.Self.UserName, "ingest_enabled", b.ingestChannel != 0)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(upd)
		}
	}
}

func (b *Bot) handleUpdate(upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorw("panic in update handler", "panic", r)
		}
	}()

	switch {
	case upd.CallbackQuery != nil:
		b.handleCallback(upd.CallbackQuery)
	case upd.Message != nil:
		b.handleMessage(upd.Message)
	case upd.ChannelPost != nil:
		// Admins can also post labeled media straight into the
		// ingestion channel.
		b.handleMedia(upd.ChannelPost)
	}
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.log.Warnw("answer callback failed", "err", err)
	}
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	action, err := nav.Decode(cq.Data)
	if err != nil {
		b.log.Warnw("bad callback token", "data", cq.Data, "err", err)
		b.present.replace(chatID, nav.NotFoundView("That control"))
		return
	}

	resp := b.engine.Handle(cq.From.ID, action)
	if resp.Playback != nil {
		b.deliverPlayback(chatID, resp.Playback)
		b.present.sendNew(chatID, resp.View)
		return
	}
	b.present.replace(chatID, resp.View)
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.IsCommand() {
		if msg.Command() == "start" {
			b.present.sendNew(msg.Chat.ID, nav.MenuView())
		}
		return
	}

	if len(msg.Photo) > 0 || msg.Video != nil {
		b.handleMedia(msg)
		return
	}

	if msg.Text != "" && msg.From != nil && b.engine.ConsumeSearch(msg.From.ID) {
		b.present.sendNew(msg.Chat.ID, b.engine.HandleSearch(msg.Text))
	}
}

// handleMedia runs the ingestion path for photo and video messages.
func (b *Bot) handleMedia(msg *tgbotapi.Message) {
	if b.ingestChannel == 0 {
		b.log.Debugw("upload ignored, ingestion disabled", "chat", msg.Chat.ID)
		return
	}
	if !b.fromIngestSource(msg) {
		b.log.Debugw("upload ignored, not from ingestion source", "chat", msg.Chat.ID)
		return
	}

	kind, handle, ok := mediaOf(msg)
	if !ok || msg.Caption == "" {
		b.reply(msg.Chat.ID, "❌ Attach a caption:\n#drama_id Title - Episode X (video)\n#drama_id Title (cover photo)")
		return
	}

	out, err := b.pipeline.Ingest(senderOf(msg), kind, handle, msg.Caption)
	switch {
	case errors.Is(err, ingest.ErrNotAdmin):
		b.reply(msg.Chat.ID, "❌ Only admins can upload dramas.")
		return
	case errors.Is(err, label.ErrBadFormat):
		b.reply(msg.Chat.ID, "❌ Bad caption format!\nUse: #drama_id Title - Episode X")
		return
	case err != nil:
		b.log.Errorw("ingest failed", "err", err)
		return
	}

	b.reply(msg.Chat.ID, confirmation(out))
}

// fromIngestSource accepts media posted in the configured channel or
// forwarded from it into a direct chat with the bot.
func (b *Bot) fromIngestSource(msg *tgbotapi.Message) bool {
	if msg.Chat != nil && msg.Chat.ID == b.ingestChannel {
		return true
	}
	return msg.ForwardFromChat != nil && msg.ForwardFromChat.ID == b.ingestChannel
}

// senderOf resolves the admitting identity: the uploading user, or
// the channel itself for anonymous channel posts.
func senderOf(msg *tgbotapi.Message) int64 {
	if msg.From != nil {
		return msg.From.ID
	}
	return msg.Chat.ID
}

// mediaOf extracts the media kind and handle. For photos Telegram
// sends every resolution; the last entry is the largest.
func mediaOf(msg *tgbotapi.Message) (label.Kind, models.MediaHandle, bool) {
	if msg.Video != nil {
		return label.KindEpisode, models.MediaHandle(msg.Video.FileID), true
	}
	if len(msg.Photo) > 0 {
		return label.KindCover, models.MediaHandle(msg.Photo[len(msg.Photo)-1].FileID), true
	}
	return "", "", false
}

func (b *Bot) deliverPlayback(chatID int64, p *nav.Playback) {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(p.Media))
	video.Caption = p.Caption
	if _, err := b.api.Send(video); err != nil {
		// Delivery is best effort; tell the user instead of crashing.
		b.log.Warnw("send video failed", "chat", chatID, "err", err)
		b.reply(chatID, "❌ Could not play this episode right now. Try again later.")
	}
}

// confirmation words the admin acknowledgement from the outcome.
func confirmation(out ingest.Outcome) string {
	if out.Kind == label.KindCover {
		if out.FieldNew {
			return fmt.Sprintf("✅ Cover saved!\n🎬 %s\n\nNow send episode videos with caption:\n#%s %s - Episode X", out.Title, out.DramaID, out.Title)
		}
		return fmt.Sprintf("✅ Cover updated!\n🎬 %s", out.Title)
	}

	verb := "updated"
	if out.FieldNew {
		verb = "added"
	}
	return fmt.Sprintf("✅ Episode %s %s!\n🎬 %s\n📺 Total episodes: %d", out.Episode, verb, out.Title, out.Episodes)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warnw("send message failed", "chat", chatID, "err", err)
	}
}

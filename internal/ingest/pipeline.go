// Package ingest turns labeled media uploads into catalog mutations:
// admission check, caption parse, then one atomic merge.
package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dramahub/internal/catalog"
	"dramahub/internal/label"
	"dramahub/internal/ops"
	"dramahub/pkg/models"
)

// ErrNotAdmin rejects uploads from senders outside the allow-list.
var ErrNotAdmin = errors.New("sender is not an admin")

// Outcome describes a successful ingestion, with enough detail for
// the caller to word a confirmation message.
type Outcome struct {
	DramaID      string
	Title        string
	Kind         label.Kind
	Episode      string // set for episode uploads
	DramaCreated bool
	FieldNew     bool // episode number or cover seen for the first time
	Episodes     int  // post-merge episode count
}

type Pipeline struct {
	Admission *Admission
	Store     *catalog.Store
	Events    *ops.Hub // optional; nil disables the feed
	Log       *zap.SugaredLogger
}

func NewPipeline(adm *Admission, store *catalog.Store, events *ops.Hub, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{Admission: adm, Store: store, Events: events, Log: log}
}

// Ingest validates and applies one upload. On rejection (ErrNotAdmin,
// label.ErrBadFormat) the catalog is untouched; on success exactly one
// merge is applied and an event is broadcast.
func (p *Pipeline) Ingest(senderID int64, kind label.Kind, handle models.MediaHandle, caption string) (Outcome, error) {
	if !p.Admission.IsAdmin(senderID) {
		return Outcome{}, fmt.Errorf("%w: user %d", ErrNotAdmin, senderID)
	}

	l, err := label.Parse(caption, kind)
	if err != nil {
		return Outcome{}, err
	}

	u := catalog.Update{ID: l.ID, Title: l.Title}
	switch l.Kind {
	case label.KindCover:
		u.Cover = handle
	case label.KindEpisode:
		u.Episode = &models.Episode{Number: l.Episode, Media: handle}
	}

	res := p.Store.MergeDrama(u)

	out := Outcome{
		DramaID:      l.ID,
		Title:        res.Title,
		Kind:         l.Kind,
		Episode:      l.Episode,
		DramaCreated: res.Created,
		Episodes:     res.Episodes,
	}
	if l.Kind == label.KindCover {
		out.FieldNew = res.CoverNew
	} else {
		out.FieldNew = res.EpisodeNew
	}

	p.Log.Infow("ingested",
		"drama", l.ID, "kind", l.Kind, "episode", l.Episode,
		"created", res.Created, "episodes", res.Episodes)
	p.publish(out)
	return out, nil
}

func (p *Pipeline) publish(out Outcome) {
	if p.Events == nil {
		return
	}
	p.Events.Broadcast(ops.IngestEvent{
		ID:       uuid.NewString(),
		Kind:     out.eventKind(),
		DramaID:  out.DramaID,
		Title:    out.Title,
		Episode:  out.Episode,
		Episodes: out.Episodes,
		At:       time.Now().UTC(),
	})
}

func (o Outcome) eventKind() string {
	switch {
	case o.DramaCreated:
		return "new_drama"
	case o.Kind == label.KindCover && o.FieldNew:
		return "new_cover"
	case o.Kind == label.KindCover:
		return "updated_cover"
	case o.FieldNew:
		return "new_episode"
	default:
		return "updated_episode"
	}
}

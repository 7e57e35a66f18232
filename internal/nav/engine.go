// Package nav renders the browse/search/playback flow. The engine is
// stateless over the catalog: every list position and target travels
// in the action token, so each step is one independent catalog read.
package nav

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"dramahub/internal/catalog"
	"dramahub/pkg/models"
)

const (
	listPageSize    = 8  // dramas per list page
	episodePageSize = 20 // episodes per drama page
	episodeRowWidth = 5  // episode buttons per keyboard row
)

// AdminChecker gates the upload-help view. Satisfied by
// *ingest.Admission.
type AdminChecker interface {
	IsAdmin(userID int64) bool
}

// Engine drives the navigation state machine. The only server-held
// session state is the per-user "awaiting search input" flag.
type Engine struct {
	store  *catalog.Store
	admins AdminChecker

	mu      sync.Mutex
	pending map[int64]struct{} // users whose next free text is a search query
}

func NewEngine(store *catalog.Store, admins AdminChecker) *Engine {
	return &Engine{
		store:   store,
		admins:  admins,
		pending: make(map[int64]struct{}),
	}
}

// Handle performs one navigation step for userID. Targets that no
// longer resolve render a not-found view with a way back; they are
// normal branches, not errors.
func (e *Engine) Handle(userID int64, a Action) Response {
	switch a.Kind {
	case KindSearchPrompt:
		e.startSearch(userID)
		return Response{View: searchPromptView()}
	case KindUploadHelp:
		return Response{View: e.uploadHelpView(userID)}
	case KindList:
		return Response{View: e.listView(a.Page)}
	case KindDrama:
		return Response{View: e.dramaView(a.ID, a.Page)}
	case KindEpisode:
		return e.episodeResponse(a.ID, a.Episode)
	default:
		return Response{View: MenuView()}
	}
}

// MenuView is the top-level menu, entered fresh on every /start.
func MenuView() View {
	return View{
		Text: "🎬 Welcome to DramaHub!\n\n" +
			"• Search for a drama\n" +
			"• Browse the full list\n" +
			"• Watch episodes right here in the chat\n\n" +
			"Pick an option below:",
		Buttons: [][]Button{
			row(Button{Label: "🔍 Search", Action: Action{Kind: KindSearchPrompt}}),
			row(Button{Label: "📺 Drama List", Action: Action{Kind: KindList}}),
			row(Button{Label: "➕ Upload (Admin)", Action: Action{Kind: KindUploadHelp}}),
		},
	}
}

// NotFoundView is rendered for stale or malformed targets.
func NotFoundView(what string) View {
	return View{
		Text: fmt.Sprintf("❌ %s not found.", what),
		Buttons: [][]Button{
			row(Button{Label: "« Drama List", Action: Action{Kind: KindList}}),
			row(Button{Label: "« Menu", Action: Action{Kind: KindMenu}}),
		},
	}
}

func searchPromptView() View {
	return View{
		Text: "🔍 Type the name of the drama you are looking for:\n\nExample: Love O2O",
		Buttons: [][]Button{
			row(Button{Label: "« Menu", Action: Action{Kind: KindMenu}}),
		},
	}
}

func (e *Engine) uploadHelpView(userID int64) View {
	back := [][]Button{row(Button{Label: "« Menu", Action: Action{Kind: KindMenu}})}
	if e.admins == nil || !e.admins.IsAdmin(userID) {
		return View{Text: "❌ Only admins can upload dramas.", Buttons: back}
	}
	return View{
		Text: "📤 How to upload:\n\n" +
			"1. Post the cover photo with caption:\n" +
			"   #drama_id Drama Title\n" +
			"2. Post each episode video with caption:\n" +
			"   #drama_id Drama Title - Episode X\n\n" +
			"Example: #LOO Love O2O - Episode 1",
		Buttons: back,
	}
}

func (e *Engine) listView(page int) View {
	dramas := e.store.ListAll()
	if len(dramas) == 0 {
		return View{
			Text: "📺 No dramas yet.\n\nAsk an admin to add some.",
			Buttons: [][]Button{
				row(Button{Label: "« Menu", Action: Action{Kind: KindMenu}}),
			},
		}
	}

	page = clampPage(page, len(dramas), listPageSize)
	start := page * listPageSize
	end := min(start+listPageSize, len(dramas))

	var buttons [][]Button
	for _, d := range dramas[start:end] {
		buttons = append(buttons, row(Button{
			Label:  d.Title,
			Action: Action{Kind: KindDrama, ID: d.ID},
		}))
	}
	if nav := pageNav(page, len(dramas), listPageSize, func(p int) Action {
		return Action{Kind: KindList, Page: p}
	}); nav != nil {
		buttons = append(buttons, nav)
	}
	buttons = append(buttons, row(Button{Label: "« Menu", Action: Action{Kind: KindMenu}}))

	return View{
		Text:    fmt.Sprintf("📺 Available Dramas (page %d/%d):", page+1, pageCount(len(dramas), listPageSize)),
		Buttons: buttons,
	}
}

func (e *Engine) dramaView(id string, page int) View {
	d, ok := e.store.Get(id)
	if !ok {
		return NotFoundView("Drama")
	}

	numbers := catalog.SortedEpisodeNumbers(d)
	page = clampPage(page, len(numbers), episodePageSize)
	start := page * episodePageSize
	end := min(start+episodePageSize, len(numbers))

	var buttons [][]Button
	current := row()
	for _, n := range numbers[start:end] {
		current = append(current, Button{
			Label:  "EP " + n,
			Action: Action{Kind: KindEpisode, ID: d.ID, Episode: n},
		})
		if len(current) == episodeRowWidth {
			buttons = append(buttons, current)
			current = row()
		}
	}
	if len(current) > 0 {
		buttons = append(buttons, current)
	}
	if nav := pageNav(page, len(numbers), episodePageSize, func(p int) Action {
		return Action{Kind: KindDrama, ID: d.ID, Page: p}
	}); nav != nil {
		buttons = append(buttons, nav)
	}
	buttons = append(buttons, row(Button{Label: "« Drama List", Action: Action{Kind: KindList}}))

	text := fmt.Sprintf("🎬 %s\n\n📊 Total episodes: %d\n\nPick an episode to watch:", d.Title, len(d.Episodes))
	if len(numbers) == 0 {
		text = fmt.Sprintf("🎬 %s\n\nNo episodes yet.", d.Title)
	}

	return View{Text: text, Cover: d.Cover, Buttons: buttons}
}

func (e *Engine) episodeResponse(id, number string) Response {
	d, ok := e.store.Get(id)
	if !ok {
		return Response{View: NotFoundView("Drama")}
	}
	ep, ok := d.Episodes[number]
	if !ok {
		return Response{View: NotFoundView("Episode")}
	}

	var buttons [][]Button
	if next, ok := nextEpisode(d, number); ok {
		buttons = append(buttons, row(Button{
			Label:  "▶️ Episode " + next,
			Action: Action{Kind: KindEpisode, ID: d.ID, Episode: next},
		}))
	}
	buttons = append(buttons, row(Button{
		Label:  "📺 Episode List",
		Action: Action{Kind: KindDrama, ID: d.ID, Page: episodePageOf(d, number)},
	}))

	return Response{
		Playback: &Playback{
			Media:   ep.Media,
			Caption: fmt.Sprintf("🎬 %s\n📺 Episode %s", d.Title, number),
		},
		View: View{Text: "Pick the next episode:", Buttons: buttons},
	}
}

// HandleSearch resolves a consumed search query into a result view.
// A blank query is rejected with a retry prompt; it never matches
// everything.
func (e *Engine) HandleSearch(query string) View {
	if strings.TrimSpace(query) == "" {
		return View{
			Text: "🔍 The search query was empty. Type the name of a drama to search for it.",
			Buttons: [][]Button{
				row(Button{Label: "🔍 Search again", Action: Action{Kind: KindSearchPrompt}}),
				row(Button{Label: "« Menu", Action: Action{Kind: KindMenu}}),
			},
		}
	}

	results := e.store.Search(query)
	if len(results) == 0 {
		return View{
			Text: fmt.Sprintf("❌ No drama matching %q.\n\nTry another keyword or browse the full list.", strings.TrimSpace(query)),
			Buttons: [][]Button{
				row(Button{Label: "📺 Drama List", Action: Action{Kind: KindList}}),
				row(Button{Label: "« Menu", Action: Action{Kind: KindMenu}}),
			},
		}
	}

	var buttons [][]Button
	for _, d := range results {
		buttons = append(buttons, row(Button{
			Label:  d.Title,
			Action: Action{Kind: KindDrama, ID: d.ID},
		}))
	}
	buttons = append(buttons, row(Button{Label: "« Menu", Action: Action{Kind: KindMenu}}))

	return View{
		Text:    fmt.Sprintf("🔍 Results for %q:", strings.TrimSpace(query)),
		Buttons: buttons,
	}
}

func (e *Engine) startSearch(userID int64) {
	e.mu.Lock()
	e.pending[userID] = struct{}{}
	e.mu.Unlock()
}

// ConsumeSearch clears and reports the user's awaiting-search flag.
// The flag is one-shot: it is cleared whether or not the query will
// match anything.
func (e *Engine) ConsumeSearch(userID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.pending[userID]
	delete(e.pending, userID)
	return ok
}

// nextEpisode reports the successor episode, defined for numeric
// numbers only: the episode keyed by number+1, when present.
func nextEpisode(d models.Drama, number string) (string, bool) {
	n, err := strconv.Atoi(number)
	if err != nil {
		return "", false
	}
	next := strconv.Itoa(n + 1)
	_, ok := d.Episodes[next]
	return next, ok
}

// episodePageOf returns the drama page the episode sits on, so "back
// to episode list" lands where the user came from.
func episodePageOf(d models.Drama, number string) int {
	for i, n := range catalog.SortedEpisodeNumbers(d) {
		if n == number {
			return i / episodePageSize
		}
	}
	return 0
}

func pageCount(total, size int) int {
	if total == 0 {
		return 1
	}
	return (total + size - 1) / size
}

func clampPage(page, total, size int) int {
	last := pageCount(total, size) - 1
	if page < 0 {
		return 0
	}
	if page > last {
		return last
	}
	return page
}

// pageNav builds the prev/next row, emitting each control only when
// the corresponding page exists.
func pageNav(page, total, size int, action func(page int) Action) []Button {
	var nav []Button
	if page > 0 {
		nav = append(nav, Button{Label: "⬅️ Prev", Action: action(page - 1)})
	}
	if (page+1)*size < total {
		nav = append(nav, Button{Label: "Next ➡️", Action: action(page + 1)})
	}
	return nav
}

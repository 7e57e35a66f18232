package label

import (
	"errors"
	"testing"
)

func TestParse_Episode(t *testing.T) {
	l, err := Parse("#LOO Love O2O - Episode 1", KindEpisode)
	if err != nil {
		t.Fatal(err)
	}
	if l.ID != "LOO" {
		t.Fatalf("id = %q, want LOO", l.ID)
	}
	if l.Title != "Love O2O" {
		t.Fatalf("title = %q, want Love O2O", l.Title)
	}
	if l.Episode != "1" {
		t.Fatalf("episode = %q, want 1", l.Episode)
	}
}

func TestParse_EpisodeTrimsWhitespace(t *testing.T) {
	l, err := Parse("#LBFD  Love Between Fairy and Devil  - Episode  12 ", KindEpisode)
	if err != nil {
		t.Fatal(err)
	}
	if l.Title != "Love Between Fairy and Devil" {
		t.Fatalf("title = %q", l.Title)
	}
	if l.Episode != "12" {
		t.Fatalf("episode = %q, want 12", l.Episode)
	}
}

func TestParse_Cover(t *testing.T) {
	l, err := Parse("#LOO Love O2O", KindCover)
	if err != nil {
		t.Fatal(err)
	}
	if l.ID != "LOO" || l.Title != "Love O2O" {
		t.Fatalf("got %+v", l)
	}
	if l.Episode != "" {
		t.Fatalf("cover label has episode %q", l.Episode)
	}
}

func TestParse_CoverPlaceholderTitle(t *testing.T) {
	// No title text after the id: the id doubles as the title.
	l, err := Parse("#LOO", KindCover)
	if err != nil {
		t.Fatal(err)
	}
	if l.Title != "LOO" {
		t.Fatalf("title = %q, want LOO", l.Title)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		caption string
		kind    Kind
	}{
		{"no marker", "LOO Love O2O - Episode 1", KindEpisode},
		{"empty id", "# Love O2O - Episode 1", KindEpisode},
		{"marker only", "#", KindCover},
		{"missing separator", "#LOO Love O2O Episode 1", KindEpisode},
		{"lowercase separator", "#LOO Love O2O - episode 1", KindEpisode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.caption, tc.kind); !errors.Is(err, ErrBadFormat) {
				t.Fatalf("err = %v, want ErrBadFormat", err)
			}
		})
	}
}

package nav

import (
	"errors"
	"testing"
)

func TestActionRoundTrip(t *testing.T) {
	actions := []Action{
		{Kind: KindMenu},
		{Kind: KindSearchPrompt},
		{Kind: KindUploadHelp},
		{Kind: KindList, Page: 0},
		{Kind: KindList, Page: 7},
		{Kind: KindDrama, ID: "LOO", Page: 0},
		{Kind: KindDrama, ID: "LBFD", Page: 3},
		{Kind: KindEpisode, ID: "LOO", Episode: "10"},
		{Kind: KindEpisode, ID: "X", Episode: "finale"},
	}
	for _, a := range actions {
		got, err := Decode(a.Encode())
		if err != nil {
			t.Fatalf("decode %q: %v", a.Encode(), err)
		}
		if got != a {
			t.Fatalf("round trip %q: got %+v, want %+v", a.Encode(), got, a)
		}
	}
}

func TestDecode_BadTokens(t *testing.T) {
	tokens := []string{
		"",
		"x",
		"l:",
		"l:abc",
		"d:LOO",
		"d::0",
		"d:LOO:abc",
		"e:LOO",
		"e::1",
		"e:LOO:",
	}
	for _, tok := range tokens {
		if _, err := Decode(tok); !errors.Is(err, ErrBadToken) {
			t.Fatalf("Decode(%q) err = %v, want ErrBadToken", tok, err)
		}
	}
}

func TestDecode_DramaIDWithColon(t *testing.T) {
	// The page suffix is split at the last colon, so odd ids still work
	// on the drama token.
	a, err := Decode("d:weird:id:2")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != "weird:id" || a.Page != 2 {
		t.Fatalf("got %+v", a)
	}
}

func TestEncode_FitsCallbackDataLimit(t *testing.T) {
	// Telegram rejects callback data over 64 bytes.
	a := Action{Kind: KindEpisode, ID: "REASONABLY-LONG-DRAMA-ID", Episode: "1000"}
	if n := len(a.Encode()); n > 64 {
		t.Fatalf("token is %d bytes", n)
	}
}

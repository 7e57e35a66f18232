package ops

import (
	"testing"
	"time"
)

func testTokens() TokenService {
	return TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "dramahub-test",
		Duration: time.Hour,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	ts := testTokens()

	token, exp, err := ts.Sign("opsctl")
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) < 50*time.Minute {
		t.Fatalf("expiry too close: %v", exp)
	}

	claims, err := ts.Parse(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "opsctl" {
		t.Fatalf("subject = %q", claims.Subject)
	}
	if claims.Role != roleOps {
		t.Fatalf("role = %q", claims.Role)
	}
}

func TestTokenParse_WrongSecret(t *testing.T) {
	token, _, err := testTokens().Sign("opsctl")
	if err != nil {
		t.Fatal(err)
	}

	other := TokenService{Secret: []byte("different"), Issuer: "dramahub-test", Duration: time.Hour}
	if _, err := other.Parse(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestTokenParse_Expired(t *testing.T) {
	ts := TokenService{Secret: []byte("test-secret"), Issuer: "x", Duration: -time.Minute}
	token, _, err := ts.Sign("opsctl")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ts.Parse(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestTokenParse_Garbage(t *testing.T) {
	if _, err := testTokens().Parse("not.a.jwt"); err == nil {
		t.Fatal("garbage token accepted")
	}
}

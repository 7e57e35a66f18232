package ingest

import "testing"

func TestAdmission_AllowList(t *testing.T) {
	a := NewAdmission([]int64{111, 333}, PolicyClosed)

	if !a.IsAdmin(111) {
		t.Fatal("listed id denied")
	}
	if a.IsAdmin(222) {
		t.Fatal("unlisted id allowed")
	}
}

func TestAdmission_EmptyListClosed(t *testing.T) {
	a := NewAdmission(nil, PolicyClosed)
	if a.IsAdmin(111) {
		t.Fatal("closed policy allowed with empty list")
	}
}

func TestAdmission_EmptyListOpen(t *testing.T) {
	a := NewAdmission(nil, PolicyOpen)
	if !a.IsAdmin(111) {
		t.Fatal("open policy denied with empty list")
	}
}

func TestAdmission_OpenPolicyIgnoredWhenListSet(t *testing.T) {
	// A non-empty list is always exact match, whatever the policy.
	a := NewAdmission([]int64{111}, PolicyOpen)
	if a.IsAdmin(222) {
		t.Fatal("open policy leaked past a configured allow-list")
	}
}

func TestAdmission_UnknownPolicyDefaultsClosed(t *testing.T) {
	a := NewAdmission(nil, Policy("whatever"))
	if a.IsAdmin(111) {
		t.Fatal("unknown policy did not default to closed")
	}
}

package ingest

// Policy decides what an empty admin allow-list means. Deployments
// disagreed on this historically, so it is an explicit configuration
// choice rather than a side effect of the empty set.
type Policy string

const (
	// PolicyClosed denies everyone when no admins are configured. Default.
	PolicyClosed Policy = "closed"
	// PolicyOpen treats everyone as an admin when no admins are configured.
	PolicyOpen Policy = "open"
)

// Admission is the static allow-list of administrator user IDs.
type Admission struct {
	ids    map[int64]struct{}
	policy Policy
}

func NewAdmission(adminIDs []int64, policy Policy) *Admission {
	ids := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = struct{}{}
	}
	if policy != PolicyOpen {
		policy = PolicyClosed
	}
	return &Admission{ids: ids, policy: policy}
}

// IsAdmin reports whether userID may mutate the catalog. With a
// non-empty allow-list, membership is exact match; with an empty one,
// the configured policy decides.
func (a *Admission) IsAdmin(userID int64) bool {
	if len(a.ids) == 0 {
		return a.policy == PolicyOpen
	}
	_, ok := a.ids[userID]
	return ok
}

package status

import "slices"

// RightDeleteStatusUpdates allows deleting status updates of other users.
const RightDeleteStatusUpdates = "delete-status-updates"

// A Principal is the identity an operation is performed on behalf of.
// The zero value is the anonymous principal.
type Principal struct {
	Actor   int64
	Name    string
	Rights  []string
	Blocked bool
}

// Registered reports whether the principal is a registered user.
func (p Principal) Registered() bool {
	return p.Actor > 0
}

// Can reports whether the principal holds the given right.
func (p Principal) Can(right string) bool {
	return slices.Contains(p.Rights, right)
}

// CanDelete reports whether p may delete a status update written by author.
func (p Principal) CanDelete(author int64) bool {
	if p.Registered() && p.Actor == author {
		return true
	}
	return p.Can(RightDeleteStatusUpdates)
}

// CanVote reports whether p may vote on a status update written by author,
// given whether p already voted on it.
func (p Principal) CanVote(author int64, voted bool) bool {
	return p.Registered() && p.Actor != author && !voted
}

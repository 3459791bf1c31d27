package app

import "github.com/hylla/tavla/internal/domain"

// mergeTask decides, for one task id, between the previously held task and
// the freshly fetched one. A locally moved task keeps its status until the
// host snapshot catches up, so the board never snaps back mid-persist:
//
//   - previous not optimistic: the incoming task wins outright;
//   - previous optimistic, incoming status differs: the snapshot is stale,
//     keep the previous task as-is;
//   - previous optimistic, incoming status equal: convergence, adopt the
//     incoming task with the optimistic flag cleared.
//
// The rule is evaluated per task id with no cross-task coupling.
func mergeTask(prev domain.Task, prevFound bool, incoming domain.Task) domain.Task {
	if !prevFound || !prev.Optimistic {
		return incoming
	}
	if incoming.Status != prev.Status {
		return prev
	}
	incoming.Optimistic = false
	return incoming
}

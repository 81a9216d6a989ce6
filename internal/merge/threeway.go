// Package merge implements the three-way merge engine that reconciles the
// Local, Snapshot and Remote states of a synchronized collection.
//
// Everything in this package is pure: no I/O, no logging, no clock. The
// orchestrator in internal/services owns all side effects.
package merge

// Stamped is implemented by records carrying the updatedAt logical clock
// used for conflict resolution.
type Stamped interface {
	Stamp() int64
}

// Result is the outcome of merging one collection. Merged holds the
// surviving entries; the key slices classify what happened to each key so
// the orchestrator can report it and apply it.
type Result[T Stamped] struct {
	Merged            map[string]T
	AddedToLocal      []string
	AddedToRemote     []string
	DeletedFromLocal  []string
	DeletedFromRemote []string
	// Conflicts counts keys where both sides diverged from the snapshot
	// and a winner had to be picked by timestamp.
	Conflicts int
}

// ThreeWay merges a collection by comparing Local (L), Snapshot (S) and
// Remote (R) per key. The snapshot is the baseline from the previous sync;
// it is what makes deletions detectable at all.
//
// Decision table, presence tested as "key exists in the map":
//
//	L S R  action
//	- - x  keep R, add to local          (new on another device)
//	x - -  keep L, add to remote         (new here)
//	- x -  drop, delete from remote      (deleted everywhere already)
//	x x -  drop, delete from local       (deleted on another device)
//	- x x  R newer than S: keep R, add to local (edited elsewhere after a
//	       local delete — edits win over stale deletes); otherwise drop and
//	       delete from remote (the local deletion wins)
//	x - x  keep the newer of L/R, ties favor L
//	x x x  keep the newer of L/R, ties favor L; only report a direction
//	       when the winner actually diverged from S
//
// Ties always resolve in favor of Local, which makes the merge
// deterministic without a secondary tiebreak key. The engine never looks at
// any field other than the timestamp: soft-archive markers and the like are
// ordinary data that wins or loses with its record.
func ThreeWay[T Stamped](local, snapshot, remote map[string]T) Result[T] {
	res := Result[T]{Merged: make(map[string]T, len(local)+len(remote))}

	for key := range keyUnion(local, snapshot, remote) {
		l, inL := local[key]
		s, inS := snapshot[key]
		r, inR := remote[key]

		switch {
		case !inL && !inS && inR:
			res.Merged[key] = r
			res.AddedToLocal = append(res.AddedToLocal, key)

		case inL && !inS && !inR:
			res.Merged[key] = l
			res.AddedToRemote = append(res.AddedToRemote, key)

		case !inL && inS && !inR:
			// Gone from both sides relative to the snapshot.
			res.DeletedFromRemote = append(res.DeletedFromRemote, key)

		case inL && inS && !inR:
			res.DeletedFromLocal = append(res.DeletedFromLocal, key)

		case !inL && inS && inR:
			// Zombie: deleted locally but still present remotely.
			if r.Stamp() > s.Stamp() {
				res.Merged[key] = r
				res.AddedToLocal = append(res.AddedToLocal, key)
			} else {
				res.DeletedFromRemote = append(res.DeletedFromRemote, key)
			}

		case inL && !inS && inR:
			if l.Stamp() >= r.Stamp() {
				res.Merged[key] = l
				if l.Stamp() > r.Stamp() {
					res.AddedToRemote = append(res.AddedToRemote, key)
				}
			} else {
				res.Merged[key] = r
				res.AddedToLocal = append(res.AddedToLocal, key)
			}

		case inL && inS && inR:
			if l.Stamp() != s.Stamp() && r.Stamp() != s.Stamp() {
				res.Conflicts++
			}
			if l.Stamp() >= r.Stamp() {
				res.Merged[key] = l
				if l.Stamp() != s.Stamp() {
					res.AddedToRemote = append(res.AddedToRemote, key)
				}
			} else {
				res.Merged[key] = r
				if r.Stamp() != s.Stamp() {
					res.AddedToLocal = append(res.AddedToLocal, key)
				}
			}
		}
	}

	return res
}

// Union merges Local and Remote without a snapshot baseline, for the first
// sync of a client. No deletions are ever inferred (a missing entry is
// indistinguishable from "never existed"), and ties favor Remote so a
// device with stale data cannot clobber the shared state.
func Union[T Stamped](local, remote map[string]T) Result[T] {
	res := Result[T]{Merged: make(map[string]T, len(local)+len(remote))}

	for key := range keyUnion(local, remote, nil) {
		l, inL := local[key]
		r, inR := remote[key]

		switch {
		case inL && !inR:
			res.Merged[key] = l
			res.AddedToRemote = append(res.AddedToRemote, key)
		case !inL && inR:
			res.Merged[key] = r
			res.AddedToLocal = append(res.AddedToLocal, key)
		default:
			if r.Stamp() >= l.Stamp() {
				res.Merged[key] = r
				if r.Stamp() != l.Stamp() {
					res.AddedToLocal = append(res.AddedToLocal, key)
				}
			} else {
				res.Merged[key] = l
				res.AddedToRemote = append(res.AddedToRemote, key)
			}
		}
	}

	return res
}

func keyUnion[T any](ms ...map[string]T) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, m := range ms {
		for k := range m {
			keys[k] = struct{}{}
		}
	}
	return keys
}

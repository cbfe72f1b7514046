// Package rank holds the pure algorithms behind recommendations and the
// aggregate film queries. Nothing here touches the store: callers load a
// snapshot, pass it in, and get ids or reordered slices back.
//
// Every function is deterministic. Where the underlying ranking has ties, the
// lower id wins.
package rank

import (
	"cmp"
	"slices"

	"github.com/sakif/filmorate/internal/model"
)

// Neighbor finds the user whose liked films overlap most with target's.
// Users sharing no film with target are never chosen. Equal overlaps go to
// the lowest user id. ok is false when target has no neighbor.
func Neighbor(target int64, likesByUser map[int64][]int64) (neighbor int64, ok bool) {
	mine := toSet(likesByUser[target])
	if len(mine) == 0 {
		return 0, false
	}

	best := 0
	for _, userID := range sortedKeys(likesByUser) {
		if userID == target {
			continue
		}
		shared := 0
		for _, filmID := range likesByUser[userID] {
			if mine[filmID] {
				shared++
			}
		}
		if shared > best {
			best, neighbor = shared, userID
		}
	}
	return neighbor, best > 0
}

// Recommend returns the films target's neighbor likes that target does not,
// in ascending id order. The result is empty, not nil, when there is nothing
// to recommend.
func Recommend(target int64, likesByUser map[int64][]int64) []int64 {
	out := []int64{}
	neighbor, ok := Neighbor(target, likesByUser)
	if !ok {
		return out
	}

	mine := toSet(likesByUser[target])
	for _, filmID := range likesByUser[neighbor] {
		if !mine[filmID] {
			out = append(out, filmID)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Intersect returns the ids present in both a and b, ascending, without
// duplicates.
func Intersect(a, b []int64) []int64 {
	inB := toSet(b)
	out := []int64{}
	for _, id := range a {
		if inB[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ByLikes sorts films in place: most liked first, then ascending id.
func ByLikes(films []model.Film) {
	slices.SortStableFunc(films, func(a, b model.Film) int {
		if c := cmp.Compare(b.LikeCount(), a.LikeCount()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func sortedKeys(m map[int64][]int64) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

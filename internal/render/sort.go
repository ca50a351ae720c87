package render

import (
	"cmp"
	"slices"

	"feditimes/internal/domain"
)

// SortPosts returns a sorted copy of posts, highest first. The sort is stable,
// so ties keep load order. posts itself is never reordered.
func SortPosts(posts []domain.Post, key domain.SortKey) []domain.Post {
	sorted := slices.Clone(posts)
	key = domain.ParseSortKey(string(key))

	slices.SortStableFunc(sorted, func(a, b domain.Post) int {
		switch key {
		case domain.SortByComments:
			return cmp.Compare(b.Comments, a.Comments)
		case domain.SortByTimestamp:
			return b.Timestamp.Compare(a.Timestamp)
		default:
			return cmp.Compare(b.Boosts, a.Boosts)
		}
	})

	return sorted
}

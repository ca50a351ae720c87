package render

import (
	"math/rand/v2"
	"testing"
	"time"

	"feditimes/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func randomPosts(r *rand.Rand, n int) []domain.Post {
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	posts := make([]domain.Post, n)
	for i := range posts {
		posts[i] = domain.Post{
			URL:       "https://instance.example/posts/" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Boosts:    r.Int64N(5),
			Comments:  r.Int64N(5),
			Timestamp: base.Add(time.Duration(r.IntN(10)) * time.Hour),
		}
	}

	return posts
}

func TestSortPostsOrdersDescending(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for range 50 {
		posts := randomPosts(r, r.IntN(40))

		byBoosts := SortPosts(posts, domain.SortByBoosts)
		for i := 1; i < len(byBoosts); i++ {
			if byBoosts[i-1].Boosts < byBoosts[i].Boosts {
				t.Fatalf("boosts increase at %d: %d < %d", i, byBoosts[i-1].Boosts, byBoosts[i].Boosts)
			}
		}

		byComments := SortPosts(posts, domain.SortByComments)
		for i := 1; i < len(byComments); i++ {
			if byComments[i-1].Comments < byComments[i].Comments {
				t.Fatalf("comments increase at %d", i)
			}
		}

		byTimestamp := SortPosts(posts, domain.SortByTimestamp)
		for i := 1; i < len(byTimestamp); i++ {
			if byTimestamp[i-1].Timestamp.Before(byTimestamp[i].Timestamp) {
				t.Fatalf("timestamps increase at %d", i)
			}
		}
	}
}

func TestSortPostsKeepsLoadOrderOnTies(t *testing.T) {
	ts := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	posts := []domain.Post{
		{URL: "first", Timestamp: ts, Boosts: 1},
		{URL: "second", Timestamp: ts.Add(time.Hour), Boosts: 2},
		{URL: "third", Timestamp: ts, Boosts: 1},
		{URL: "fourth", Timestamp: ts, Boosts: 2},
	}

	tests := []struct {
		key  domain.SortKey
		want []string
	}{
		{domain.SortByBoosts, []string{"second", "fourth", "first", "third"}},
		{domain.SortByComments, []string{"first", "second", "third", "fourth"}},
		{domain.SortByTimestamp, []string{"second", "first", "third", "fourth"}},
	}

	for _, test := range tests {
		if diff := cmp.Diff(test.want, urls(SortPosts(posts, test.key))); diff != "" {
			t.Fatalf("unexpected order for %s (-want +got):\n%s", test.key, diff)
		}
	}
}

func TestSortPostsDoesNotReorderInput(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	posts := randomPosts(r, 20)
	before := urls(posts)

	_ = SortPosts(posts, domain.SortByComments)

	if diff := cmp.Diff(before, urls(posts)); diff != "" {
		t.Fatalf("input was reordered (-want +got):\n%s", diff)
	}
}

func TestSortPostsIsIdempotent(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	posts := randomPosts(r, 30)

	for _, key := range []domain.SortKey{domain.SortByBoosts, domain.SortByComments, domain.SortByTimestamp} {
		first := urls(SortPosts(posts, key))
		second := urls(SortPosts(posts, key))

		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("sorting by %s is not idempotent (-first +second):\n%s", key, diff)
		}
	}
}

func TestSortPostsUnknownKeyUsesBoosts(t *testing.T) {
	posts := []domain.Post{{URL: "low", Boosts: 1}, {URL: "high", Boosts: 9}}

	if diff := cmp.Diff([]string{"high", "low"}, urls(SortPosts(posts, "likes"))); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func urls(posts []domain.Post) []string {
	out := make([]string, 0, len(posts))
	for _, post := range posts {
		out = append(out, post.URL)
	}

	return out
}

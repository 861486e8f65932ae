// Package leaderboard computes the current leaders and caches a snapshot
// of the full board so request handlers never scan the user table
// directly.
package leaderboard

import (
	"sort"

	"server/internal/domain"
)

// Leaders returns every user holding the maximum point count, ordered by
// name (email as fallback) so ties come back in the same order on every
// call. A board where nobody has checked in has no leaders; zero points
// never makes anyone a leader.
func Leaders(users []domain.User) []domain.User {
	maxPoints := 0
	for _, u := range users {
		if u.Points > maxPoints {
			maxPoints = u.Points
		}
	}
	if maxPoints == 0 {
		return nil
	}

	var leaders []domain.User
	for _, u := range users {
		if u.Points == maxPoints {
			leaders = append(leaders, u)
		}
	}
	sort.Slice(leaders, func(i, j int) bool {
		return sortKey(leaders[i]) < sortKey(leaders[j])
	})
	return leaders
}

// Ranked returns all users ordered by points descending, then by the same
// stable key used for leader ties.
func Ranked(users []domain.User) []domain.User {
	ranked := make([]domain.User, len(users))
	copy(ranked, users)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		return sortKey(ranked[i]) < sortKey(ranked[j])
	})
	return ranked
}

func sortKey(u domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

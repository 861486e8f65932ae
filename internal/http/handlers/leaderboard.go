package handlers

import (
	"net/http"
	"time"

	"server/internal/domain"
)

type boardEntryDTO struct {
	Name    string `json:"name"`
	Points  int    `json:"points"`
	Coupons int    `json:"coupons"`
}

type leaderboardResponse struct {
	Leaders    []boardEntryDTO `json:"leaders"`
	Ranked     []boardEntryDTO `json:"ranked"`
	ComputedAt time.Time       `json:"computed_at"`
}

// Leaderboard serves the cached board snapshot. Ties share the top spot;
// a board where nobody has checked in has no leaders.
func (a *App) Leaderboard(w http.ResponseWriter, r *http.Request) {
	snap := a.Board.Snapshot()

	resp := leaderboardResponse{
		Leaders:    make([]boardEntryDTO, 0, len(snap.Leaders)),
		Ranked:     make([]boardEntryDTO, 0, len(snap.Ranked)),
		ComputedAt: snap.ComputedAt,
	}
	for _, u := range snap.Leaders {
		resp.Leaders = append(resp.Leaders, boardEntry(u))
	}
	for _, u := range snap.Ranked {
		resp.Ranked = append(resp.Ranked, boardEntry(u))
	}
	a.json(w, http.StatusOK, resp)
}

func boardEntry(u domain.User) boardEntryDTO {
	name := u.Name
	if name == "" {
		name = u.Email
	}
	return boardEntryDTO{
		Name:    name,
		Points:  u.Points,
		Coupons: len(u.ActiveCoupons()),
	}
}

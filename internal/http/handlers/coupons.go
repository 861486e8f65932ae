package handlers

import "net/http"

type couponsResponse struct {
	Coupons []couponDTO `json:"coupons"`
	Active  int         `json:"active"`
	Total   int         `json:"total"`
}

// MyCoupons lists the caller's coupons, redeemed ones included.
func (a *App) MyCoupons(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}

	coupons := make([]couponDTO, 0, len(user.Coupons))
	active := 0
	for _, c := range user.Coupons {
		coupons = append(coupons, couponDTO(c))
		if !c.Redeemed {
			active++
		}
	}
	a.json(w, http.StatusOK, couponsResponse{
		Coupons: coupons,
		Active:  active,
		Total:   len(coupons),
	})
}

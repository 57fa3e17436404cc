package web

import (
	"net/http"
	"time"
)

func (s *Server) getLeaderboard(w http.ResponseWriter, _ *http.Request) {
	leaderboard, err := s.back.GetLeaderboard(
		250, // seems like an OK cutoff right now, pagination can wait
	)
	if err != nil {
		s.error(w, err)
		return
	}

	s.cache(w, "public", 1*time.Minute)
	s.response(w, http.StatusOK, leaderboard)
}

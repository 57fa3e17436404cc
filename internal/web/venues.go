package web

import (
	"crosspointx/internal/util"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi"
)

func (s *Server) getVenues(w http.ResponseWriter, _ *http.Request) {
	venues, err := s.back.GetVenues()
	if err != nil {
		s.error(w, err)
		return
	}

	s.cache(w, "public", 5*time.Minute)
	s.response(w, http.StatusOK, venues)
}

func (s *Server) getVenue(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	venue, err := s.back.GetVenueBySlug(slug)
	if err != nil {
		s.error(w, err)
		return
	}

	stats, err := s.back.GetVenueStats(slug)
	if err != nil {
		s.error(w, err)
		return
	}

	s.cache(w, "public", 1*time.Minute)
	s.response(w, http.StatusOK, map[string]interface{}{
		"venue": venue,
		"stats": stats,
	})
}

func (s *Server) getRoster(w http.ResponseWriter, r *http.Request) {
	venue, err := s.back.GetVenueBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		s.error(w, err)
		return
	}

	roster, err := s.back.GetRoster(venue.ID)
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, roster)
}

func (s *Server) getLastGame(w http.ResponseWriter, r *http.Request) {
	venue, err := s.back.GetVenueBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		s.error(w, err)
		return
	}

	game, err := s.back.GetLastGame(venue.ID)
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, game)
}

type checkInPayload struct {
	DisplayID string `json:"displayID"`
}

func (s *Server) checkInPlayer(w http.ResponseWriter, r *http.Request) {
	venue, err := s.back.GetVenueBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		s.error(w, err)
		return
	}

	var payload checkInPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, util.ErrPublic("invalid JSON payload"))
		return
	}

	player, err := s.back.CheckInPlayer(venue.ID, payload.DisplayID)
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, player)
}

func (s *Server) checkOutPlayer(w http.ResponseWriter, r *http.Request) {
	venue, err := s.back.GetVenueBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		s.error(w, err)
		return
	}

	if err := s.back.CheckOutPlayer(venue.ID, chi.URLParam(r, "displayID")); err != nil {
		s.error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type assignTeamPayload struct {
	DisplayID string `json:"displayID"`
	Team      string `json:"team"`
}

func (s *Server) assignTeam(w http.ResponseWriter, r *http.Request) {
	venue, err := s.back.GetVenueBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		s.error(w, err)
		return
	}

	var payload assignTeamPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, util.ErrPublic("invalid JSON payload"))
		return
	}

	if err := s.back.AssignTeam(venue.ID, payload.DisplayID, payload.Team); err != nil {
		s.error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type recordResultPayload struct {
	WinningTeam string `json:"winningTeam"`
}

// recordResult concludes the game between the venue's two assigned teams.
// A failed submission leaves every rating untouched so the referee can
// safely retry.
func (s *Server) recordResult(w http.ResponseWriter, r *http.Request) {
	venue, err := s.back.GetVenueBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		s.error(w, err)
		return
	}

	var payload recordResultPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, util.ErrPublic("invalid JSON payload"))
		return
	}

	if err := s.back.RecordRosterOutcome(venue.ID, payload.WinningTeam); err != nil {
		s.error(w, err)
		return
	}

	game, err := s.back.GetLastGame(venue.ID)
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, game)
}

package web

import (
	"crosspointx/internal/config"
	"crosspointx/internal/util"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

// qrLinkLifetime is how long the signed check-in link embedded in a player's
// QR code stays valid. QR codes are printed on membership cards, so short
// lifetimes would mean reprinting cards.
const qrLinkLifetime = 365 * 24 * time.Hour

type registerPlayerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) registerPlayer(w http.ResponseWriter, r *http.Request) {
	if !s.registrationLimiter.Allow() {
		s.response(w, http.StatusTooManyRequests, map[string]string{
			"error": "too many registrations, try again later",
		})
		return
	}

	var payload registerPlayerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, util.ErrPublic("invalid JSON payload"))
		return
	}

	player, err := s.back.RegisterPlayer(payload.Name, payload.Email)
	if err != nil {
		s.error(w, err)
		return
	}

	qrURL, err := s.qrCheckInURL(player.DisplayID)
	if err != nil {
		// The player exists either way, a missing QR link is not worth a 5xx.
		log.Printf("warning: unable to sign QR URL: %s", err)
	}

	s.response(w, http.StatusCreated, map[string]interface{}{
		"player": player,
		"qr_url": qrURL,
	})
}

// qrCheckInURL builds the signed link a player's QR code points at.
func (s *Server) qrCheckInURL(displayID string) (string, error) {
	if s.config.Domain == "" {
		return "", nil
	}

	return s.config.SignURL(
		fmt.Sprintf("https://%s/checkin?player=%s", s.config.Domain, displayID),
		qrLinkLifetime,
	)
}

// qrCheckIn resolves the player behind a scanned QR link. The signature is
// verified first so a forged or edited link never reaches the roster flow.
func (s *Server) qrCheckIn(w http.ResponseWriter, r *http.Request) {
	if err := s.checkQRLink(r); err != nil {
		if errors.Is(err, config.ErrTokenExpired) {
			s.response(w, http.StatusGone, map[string]string{
				"error": "this QR code has expired, ask the desk for a new card",
			})
			return
		}

		log.Printf("warning: rejected QR link: %s", err)
		s.error(w, util.ErrPublic("invalid check-in link"))
		return
	}

	player, err := s.back.GetPlayerByDisplayID(r.URL.Query().Get("player"))
	if err != nil {
		s.error(w, err)
		return
	}

	s.response(w, http.StatusOK, player)
}

// checkQRLink rebuilds the absolute URL the QR code was signed over and
// verifies the signature and expiry carried in its query parameters.
func (s *Server) checkQRLink(r *http.Request) error {
	return s.config.CheckURL(fmt.Sprintf("https://%s%s", s.config.Domain, r.URL.RequestURI()))
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.error(w, util.ErrPublic("invalid player ID"))
		return
	}

	player, err := s.back.GetPlayerByID(util.UUIDAsBlob(id))
	if err != nil {
		s.error(w, err)
		return
	}

	rating, err := s.back.GetPlayerRating(player.ID)
	if err != nil {
		s.error(w, err)
		return
	}

	s.cache(w, "public", 1*time.Minute)
	s.response(w, http.StatusOK, map[string]interface{}{
		"player": player,
		"rating": rating,
	})
}

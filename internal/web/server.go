package web

import (
	"crosspointx/internal/back"
	"crosspointx/internal/config"
	"crosspointx/internal/util"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"golang.org/x/time/rate"
)

type Server struct {
	http   *http.Server
	back   *back.Back
	config *config.Config

	// registrationLimiter throttles sign-ups, the only unauthenticated
	// write endpoint.
	registrationLimiter *rate.Limiter

	lastUpdateMu sync.RWMutex
	lastUpdate   time.Time
}

func NewServer(b *back.Back, conf *config.Config) *Server {
	s := &Server{
		back:                b,
		config:              conf,
		registrationLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		lastUpdate:          time.Now(),
	}

	s.http = &http.Server{
		Addr:         conf.Listen,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/", noContent)
	r.Get("/checkin", s.qrCheckIn)

	r.Get("/v1/leaderboard", s.getLeaderboard)
	r.Get("/v1/player/{id}", s.getPlayer)
	r.Post("/v1/players", s.registerPlayer)

	r.Get("/v1/venues", s.getVenues)
	r.Get("/v1/venue/{slug}", s.getVenue)
	r.Get("/v1/venue/{slug}/roster", s.getRoster)
	r.Get("/v1/venue/{slug}/game", s.getLastGame)

	// Referee-only operations, one bearer token per tablet.
	r.Group(func(r chi.Router) {
		r.Use(s.refereeOnly)

		r.Post("/v1/venue/{slug}/checkin", s.checkInPlayer)
		r.Delete("/v1/venue/{slug}/checkin/{displayID}", s.checkOutPlayer)
		r.Post("/v1/venue/{slug}/teams", s.assignTeam)
		r.Post("/v1/venue/{slug}/result", s.recordResult)
	})

	return r
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Println("info: starting HTTP server")
	wg.Add(1)
	defer wg.Done()

	notifications, unsubscribe := s.back.Subscribe()
	defer unsubscribe()
	go s.watchNotifications(notifications)

	go func() {
		err := s.http.ListenAndServe()
		if err == http.ErrServerClosed {
			log.Println("info: HTTP server closed")
			return
		}

		log.Fatalf("webserver crashed: %s", err)
	}()

	<-done
	if err := s.http.Close(); err != nil {
		log.Printf("warning: unable to close webserver: %s", err)
	}
}

// watchNotifications tracks the last time anything user-visible changed so
// cached leaderboard reads can be invalidated by Last-Modified.
func (s *Server) watchNotifications(ch <-chan back.Notification) {
	for n := range ch {
		log.Printf("debug: notification: %s", back.NotificationTypeName(n.Type))

		s.lastUpdateMu.Lock()
		s.lastUpdate = time.Now()
		s.lastUpdateMu.Unlock()
	}
}

func (s *Server) response(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(data)
	if err != nil {
		log.Printf("error: unable to marshal response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("error: unable to send response: %s", err)
	}
}

// error writes the appropriate status and body for an error: public errors
// are echoed to the client, the rest is logged and hidden behind a 500.
func (s *Server) error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, util.ErrPublic("")):
		s.response(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, sql.ErrNoRows):
		s.response(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, back.ErrDisplayIDSpaceExhausted):
		log.Printf("error: %s", err)
		s.response(w, http.StatusConflict, map[string]string{"error": "no player ID left to assign"})
	default:
		log.Printf("error: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *Server) cache(w http.ResponseWriter, visibility string, d time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("%s, max-age=%d", visibility, d/time.Second))

	s.lastUpdateMu.RLock()
	w.Header().Set("Last-Modified", s.lastUpdate.UTC().Format(http.TimeFormat))
	s.lastUpdateMu.RUnlock()
}

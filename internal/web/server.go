package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rezmoss/sctk/internal/license"
	"github.com/rezmoss/sctk/internal/sysindex"
)

// maxBodySize bounds request bodies (50MB).
const maxBodySize = 50 << 20

// ServerState holds the data loaded for lookups and enrichment
type ServerState struct {
	mu      sync.RWMutex
	Index   sysindex.Index
	Catalog license.Catalog
}

// SetIndex replaces the package path index served by /api/lookup.
func (s *ServerState) SetIndex(idx sysindex.Index) {
	s.mu.Lock()
	s.Index = idx
	s.mu.Unlock()
}

// SetCatalog replaces the license data served by /api/enrich.
func (s *ServerState) SetCatalog(c license.Catalog) {
	s.mu.Lock()
	s.Catalog = c
	s.mu.Unlock()
}

// Server serves the HTTP API.
type Server struct {
	state *ServerState
	log   logrus.FieldLogger
}

// NewServer returns a server over state. A nil state starts empty.
func NewServer(state *ServerState, log logrus.FieldLogger) *Server {
	if state == nil {
		state = &ServerState{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{state: state, log: log}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/simplify", s.handleSimplify)
	mux.HandleFunc("/api/match", s.handleMatch)
	mux.HandleFunc("/api/lookup", s.handleLookup)
	mux.HandleFunc("/api/enrich", s.handleEnrich)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/version", s.handleVersion)

	return mux
}

// Serve starts the web server on the specified port and shuts it down
// when ctx is done.
func (s *Server) Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"qmaze/reinforcement"
	"qmaze/server/cell_views"
	"qmaze/server/fastview"
	"qmaze/server/root_view"

	"github.com/gorilla/mux"
)

const shutdownGracePeriod = 5 * time.Second

// Server serves the training monitor: a single page whose views are updated over a
// websocket while training runs, plus the run statistics as json.
// The page's ele-update channel is shared, so only one websocket client is
// served at a time.
type Server struct {
	addr     string
	initial  *cell_views.Board
	rootView *root_view.RootView
	stats    *reinforcement.Stats
	router   *mux.Router
	// Serializes websocket clients.
	clientMu sync.Mutex
}

// NewServer initializes all of the views and returns a server. The views consume
// @snapshots until ctx is cancelled.
func NewServer(
	ctx context.Context,
	addr string,
	initial *cell_views.Snapshot,
	snapshots <-chan *cell_views.Snapshot,
	stats *reinforcement.Stats,
) (*Server, error) {
	rootView, err := root_view.NewRootView(ctx, snapshots)
	if err != nil {
		return nil, err
	}

	server := &Server{
		addr:     addr,
		initial:  cell_views.Convert(initial),
		rootView: rootView,
		stats:    stats,
	}
	server.router = server.routes()
	return server, nil
}

func (server *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)
	router.HandleFunc("/api/stats", server.serveStats).Methods(http.MethodGet)
	return router
}

// Handler returns the server's routes, e.g. for testing.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (server *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    server.addr,
		Handler: server.router,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- httpServer.ListenAndServe()
	}()
	log.Printf("monitor listening on http://%s", server.addr)

	select {
	case err := <-errs:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// serveWebsocket publishes view updates to the client until it disconnects.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	if !server.clientMu.TryLock() {
		http.Error(w, "monitor already has a client", http.StatusConflict)
		return
	}
	defer server.clientMu.Unlock()

	cli, err := fastview.NewClient(server.rootView.Updates(), w, r)
	if err != nil {
		log.Println(err)
		return
	}

	if err := cli.Sync(); err != nil {
		log.Println("sync:", err)
	}
}

// Serve the index.html main page.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := renderTemplate(w, server.rootView, server.initial); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (server *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(server.stats.Snapshot()); err != nil {
		log.Println("stats:", err)
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}

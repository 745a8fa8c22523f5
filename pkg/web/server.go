package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ritzau/resultgraph/pkg/graph"
	"github.com/ritzau/resultgraph/pkg/ingest"
	"github.com/ritzau/resultgraph/pkg/logging"
	"github.com/ritzau/resultgraph/pkg/pubsub"
)

// maxResultSize bounds a posted result document
const maxResultSize = 64 << 20

// IngestResponse is returned after a result document was added
type IngestResponse struct {
	Format string `json:"format"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	ingestor  *ingest.Ingestor
	publisher *pubsub.SSEPublisher
}

// NewServer creates a server over the ingestor's graph. Every mutation of
// the graph is forwarded to graph_events subscribers.
func NewServer(in *ingest.Ingestor) (*Server, error) {
	ssePublisher := pubsub.NewSSEPublisher()

	// graph_status: buffer last 10 events, replay only the current state
	ssePublisher.ConfigureTopic(pubsub.TopicGraphStatus, pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false,
	})

	// graph_events: no buffering, late subscribers fetch /api/graph instead
	ssePublisher.ConfigureTopic(pubsub.TopicGraphEvents, pubsub.TopicConfig{})

	if err := pubsub.ForwardEvents(in.Network().Events(), ssePublisher); err != nil {
		return nil, fmt.Errorf("failed to forward graph events: %w", err)
	}

	s := &Server{
		router:    mux.NewRouter(),
		ingestor:  in,
		publisher: ssePublisher,
	}
	s.setupRoutes()
	return s, nil
}

// Publisher returns the publisher serving the subscription endpoints
func (s *Server) Publisher() pubsub.Publisher {
	return s.publisher
}

// Handler returns the routed handler wrapped with request logging
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// PublishStatus publishes the current graph totals on graph_status
func (s *Server) PublishStatus(state, source string, format ingest.Format, cause error) error {
	status := pubsub.GraphStatus{
		State:  state,
		Source: source,
		Format: string(format),
	}
	if cause != nil {
		status.Error = cause.Error()
	}
	s.ingestor.View(func(g *graph.Graph) {
		status.Nodes = g.NodeCount()
		status.Edges = g.EdgeCount()
	})
	return s.publisher.Publish(pubsub.TopicGraphStatus, state, status)
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	s.router.HandleFunc("/api/results", s.handleIngest).Methods("POST")
	s.router.HandleFunc("/api/results/{format}", s.handleIngest).Methods("POST")
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/graph", s.handleReset).Methods("DELETE")
	s.router.HandleFunc("/api/graph/dot", s.handleDOT).Methods("GET")
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if topic != pubsub.TopicGraphEvents && topic != pubsub.TopicGraphStatus {
		http.Error(w, "unknown topic", http.StatusNotFound)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flush(w)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.WarnContext(r.Context(), "Error writing SSE event", "topic", topic, "error", err)
				return
			}
			flush(w)
		}
	}
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	format, err := ingest.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxResultSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	used, err := s.ingestor.Ingest(format, raw)
	if err != nil {
		logging.WarnContext(r.Context(), "Rejected result document", "format", used, "error", err)
		if perr := s.PublishStatus("failed", r.URL.Path, used, err); perr != nil {
			logging.WarnContext(r.Context(), "Failed to publish status", "error", perr)
		}
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	if err := s.PublishStatus("ingested", r.URL.Path, used, nil); err != nil {
		logging.WarnContext(r.Context(), "Failed to publish status", "error", err)
	}

	resp := IngestResponse{Format: string(used)}
	s.ingestor.View(func(g *graph.Graph) {
		resp.Nodes = g.NodeCount()
		resp.Edges = g.EdgeCount()
	})
	logging.InfoContext(r.Context(), "Ingested result document", "format", used, "nodes", resp.Nodes, "edges", resp.Edges)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ingestor.Snapshot())
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	var (
		out []byte
		err error
	)
	s.ingestor.View(func(g *graph.Graph) {
		out, err = g.MarshalDOT("results")
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write(out)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.ingestor.Reset()
	if err := s.PublishStatus("reset", r.URL.Path, "", nil); err != nil {
		logging.WarnContext(r.Context(), "Failed to publish status", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Start starts the web server on the specified port
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("Starting web server", "url", fmt.Sprintf("http://localhost%s", addr))
	return http.ListenAndServe(addr, s.Handler())
}

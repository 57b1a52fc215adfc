package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	"mcp-file-gateway/internal/models"
	"mcp-file-gateway/pkg/logging"
)

// maxRequestBody bounds one HTTP JSON-RPC request
const maxRequestBody = maxMessageSize

// shutdownTimeout bounds how long in-flight requests get to finish
const shutdownTimeout = 5 * time.Second

// HTTPTransport exposes an MCPServer over HTTP. Each POST carries exactly
// one JSON-RPC message; requests are served concurrently by the same server.
type HTTPTransport struct {
	server    *MCPServer
	publicDir string
	fs        afero.Fs
	router    *mux.Router
	logger    *logging.StructuredLogger
}

// NewHTTPTransport creates the transport. Static pages are read from
// publicDir on fs.
func NewHTTPTransport(server *MCPServer, publicDir string, fs afero.Fs) *HTTPTransport {
	t := &HTTPTransport{
		server:    server,
		publicDir: publicDir,
		fs:        fs,
		logger:    server.loggingManager.GetLogger("http"),
	}
	t.router = t.routes()
	return t
}

func (t *HTTPTransport) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/mcp", t.handleMCP).Methods(http.MethodPost)
	r.HandleFunc("/mcp/", t.handleMCP).Methods(http.MethodPost)
	r.HandleFunc("/", t.handleIndex).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(t.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(t.handleNotFound)
	return r
}

// ServeHTTP implements http.Handler
func (t *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (t *HTTPTransport) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return t.Serve(ctx, listener)
}

// Serve is ListenAndServe over an existing listener
func (t *HTTPTransport) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           t,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		t.logger.WithContext("addr", listener.Addr().String()).Info("HTTP transport listening")
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			t.logger.WithError(err).Warn("HTTP transport did not shut down cleanly")
			return err
		}
		t.logger.Info("HTTP transport stopped")
		return nil
	}
}

func (t *HTTPTransport) handleMCP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		t.logger.WithError(err).Warn("Failed to read request body")
		writeJSON(w, http.StatusBadRequest, parseErrorResponse())
		return
	}

	var message models.MCPMessage
	if err := json.Unmarshal(body, &message); err != nil {
		t.logger.WithError(err).Warn("Error decoding message")
		writeJSON(w, http.StatusBadRequest, parseErrorResponse())
		return
	}

	response := t.server.HandleMessage(r.Context(), &message)
	if response == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (t *HTTPTransport) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := afero.ReadFile(t.fs, filepath.Join(t.publicDir, "index.html"))
	if err != nil {
		t.logger.WithError(err).WithContext("public_dir", t.publicDir).Error("Could not load index.html")
		http.Error(w, "Could not load index.html", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (t *HTTPTransport) handleNotFound(w http.ResponseWriter, r *http.Request) {
	t.logger.WithContext("method", r.Method).WithContext("path", r.URL.Path).Debug("No route")
	http.NotFound(w, r)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(encoded)
}

// ABOUTME: Gateway orchestrator that owns the HTTP server, registry, and resolver
// ABOUTME: Wires routes and manages startup/shutdown lifecycle

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/2389/vault-gateway/internal/auth"
	"github.com/2389/vault-gateway/internal/config"
	"github.com/2389/vault-gateway/internal/schema"
	"github.com/2389/vault-gateway/internal/session"
	"github.com/2389/vault-gateway/internal/store"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// Gateway orchestrates the vault-gateway server components: the session
// registry, the resource resolver, and the HTTP API in front of them.
type Gateway struct {
	config     *config.Config
	registry   *session.Registry
	resolver   *schema.Resolver
	verifier   *auth.JWTVerifier
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a gateway serving the given schema table, opening store
// connections through dialer.
func New(cfg *config.Config, resolver *schema.Resolver, dialer store.Dialer, logger *slog.Logger) *Gateway {
	g := &Gateway{
		config:   cfg,
		registry: session.NewRegistry(dialer, logger),
		resolver: resolver,
		verifier: auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret)),
		logger:   logger.With("component", "gateway"),
	}

	g.httpServer = &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: g.Handler(),
	}

	return g
}

// Handler builds the HTTP route table. Literal segments (_version, _connect,
// _disconnect, _find, health) take precedence over the resource wildcards.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /_version", g.handleVersion)
	mux.HandleFunc("POST /_connect", g.handleConnect)
	mux.HandleFunc("POST /_disconnect", g.handleDisconnect)
	mux.HandleFunc("GET /health", g.handleHealth)

	mux.HandleFunc("GET /{resource}/_find", g.handleFind)
	mux.HandleFunc("POST /{resource}/_find", g.handleFind)
	mux.HandleFunc("GET /{resource}/{id}", g.handleGet)
	mux.HandleFunc("DELETE /{resource}/{id}", g.handleDelete)
	mux.HandleFunc("POST /{resource}", g.handleInsert)

	return mux
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails. On cancellation it shuts down gracefully and disconnects
// every live session.
func (g *Gateway) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("http server listening", "addr", g.httpServer.Addr)
		if err := g.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return g.Shutdown(shutdownCtx)
}

// Shutdown stops the HTTP server and closes all sessions.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down")

	err := g.httpServer.Shutdown(ctx)
	g.registry.Close()

	if err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// handleHealth handles GET /health as a liveness check.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status":"ok"}`)
}

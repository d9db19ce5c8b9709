package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// healthServer answers GET /health while an order runs.
type healthServer struct {
	app    *App
	server *http.Server
	addr   net.Addr
}

func (h *healthServer) handle(w http.ResponseWriter, r *http.Request) {
	h.app.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startHealthcheckServer binds the port synchronously so a taken port fails
// the run, then serves in the background.
func (a *App) startHealthcheckServer(port int) (*healthServer, error) {
	a.logger.Debug("Configuring health check server.")
	h := &healthServer{app: a}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handle)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to start health check server: %w", err)
	}
	h.addr = ln.Addr()
	h.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://%s/health", h.addr))
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
	return h, nil
}

func (h *healthServer) close() error {
	if h == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h.app.logger.Debug("Shutting down health check server...")
	if err := h.server.Shutdown(ctx); err != nil {
		h.app.logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	h.app.logger.Debug("Health check server shut down gracefully.")
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pydigger/pkg/errors"
	"github.com/matzehuels/pydigger/pkg/ingest"
	"github.com/matzehuels/pydigger/pkg/record"
	"github.com/matzehuels/pydigger/pkg/report"
)

// serveCommand creates the serve command, a read-only JSON API over the
// data directory.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report, run statistics and records over HTTP",
		Long: `Start a read-only HTTP API over the data directory:

  GET /api/report           report.json
  GET /api/stats            statistics of the last download run
  GET /api/projects/{name}  stored record of one project
  GET /healthz              liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "listen on %s", addr)
	}
	printInfo("Serving %s on http://%s", c.Config.DataDir, ln.Addr())
	return c.serve(ctx, ln)
}

// serve runs the API on ln until ctx is done or the server fails. The
// shutdown goroutine exits on both paths.
func (c *CLI) serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler:           newAPI(c.Config, c.Logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		done <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		cancel()
		<-done
		return err
	}
	return <-done
}

// api serves the files of one data directory.
type api struct {
	cfg    *Config
	store  *record.Store
	logger *log.Logger
}

// newAPI returns the router of the read-only API.
func newAPI(cfg *Config, logger *log.Logger) http.Handler {
	a := &api{cfg: cfg, store: record.NewStore(cfg.RecordsDir()), logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/report", a.getReport)
		r.Get("/stats", a.getStats)
		r.Get("/projects/{name}", a.getProject)
	})
	return r
}

func (a *api) getReport(w http.ResponseWriter, r *http.Request) {
	rep, err := report.Read(a.cfg.ReportPath())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, rep)
}

func (a *api) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := ingest.LoadStats(a.cfg.StatsPath())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, stats)
}

func (a *api) getProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rec, err := a.store.Load(name)
	if err == nil && rec == nil {
		err = errors.New(errors.ErrCodeNotFound, "no record for %s", name)
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, rec)
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()),
		)
	})
}

func (a *api) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		a.logger.Error("cannot encode response", "err", err)
	}
}

// writeError maps error codes to HTTP statuses.
func (a *api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case os.IsNotExist(err), errors.Is(err, errors.ErrCodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrCodeInvalidPackage), errors.Is(err, errors.ErrCodeInvalidInput):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	a.writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

// Package server exposes the tracker over HTTP so the host can trigger a
// manual report and inspect what would be sent.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/animalscode/actracker/pkg/schedule"
	"github.com/animalscode/actracker/pkg/tracker"
)

type Server struct {
	e         *echo.Echo
	tracker   *tracker.Tracker
	scheduler *schedule.Scheduler
}

// New builds the server. Manual sends go through scheduler so they coalesce
// with scheduled ones.
func New(tr *tracker.Tracker, scheduler *schedule.Scheduler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger())
	e.Use(markAsyncRequests)

	s := &Server{
		e:         e,
		tracker:   tr,
		scheduler: scheduler,
	}

	group := e.Group("/tracker")
	// Send a report now, subject to the override cooldown
	group.POST("/send", s.send)
	// Preview the report without sending it
	group.GET("/snapshot", s.snapshot)
	group.GET("/status", s.status)

	// Health check endpoint
	e.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.e
}

// Serve handles requests on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := http.Server{
		Handler:           s.e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		slog.Error("Failed to start server", "error", err)
		return err
	}

	return nil
}

// markAsyncRequests flags in-page XHR requests so the tracker refuses to
// send from them.
func markAsyncRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if strings.EqualFold(req.Header.Get("X-Requested-With"), "XMLHttpRequest") {
			c.SetRequest(req.WithContext(tracker.WithAsyncRequest(req.Context())))
		}
		return next(c)
	}
}

func (s *Server) send(c echo.Context) error {
	ctx := c.Request().Context()
	if tracker.IsAsyncRequest(ctx) {
		return echo.NewHTTPError(http.StatusForbidden, "reports are not sent from asynchronous requests")
	}

	if err := s.scheduler.Fire(ctx, tracker.SendEvent, true); err != nil {
		slog.Error("Failed to fire send event", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	st, err := s.tracker.Status(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusAccepted, st)
}

func (s *Server) snapshot(c echo.Context) error {
	return c.JSON(http.StatusOK, s.tracker.BuildSnapshot(c.Request().Context()))
}

func (s *Server) status(c echo.Context) error {
	st, err := s.tracker.Status(c.Request().Context())
	if err != nil {
		slog.Error("Failed to read tracker status", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/matheuskafuri/attendwatch/internal/config"
	"github.com/matheuskafuri/attendwatch/internal/holiday"
	"github.com/matheuskafuri/attendwatch/internal/ingest"
	"github.com/matheuskafuri/attendwatch/internal/logging"
	"github.com/matheuskafuri/attendwatch/internal/progress"
	"github.com/matheuskafuri/attendwatch/internal/schedule"
	"github.com/matheuskafuri/attendwatch/internal/store"
)

// Runner is the ingestion surface the API drives.
type Runner interface {
	Start(ctx context.Context) (<-chan ingest.Result, error)
	Running() bool
}

type Deps struct {
	Runner    Runner
	Store     store.Store
	Progress  progress.Source
	Broker    *progress.Broker
	Holidays  *holiday.Store
	Scheduler *schedule.Scheduler
	Config    *config.Holder
	Log       logging.Logger
	Now       func() time.Time
}

type Server struct {
	deps   Deps
	engine *gin.Engine
}

func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE"}
	r.Use(cors.New(corsConfig))

	s := &Server{deps: d, engine: r}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	{
		api.POST("/scrape", s.startScrape)
		api.GET("/scrape-status", s.scrapeStatus)
		api.GET("/scrape-status/stream", s.scrapeStatusStream)

		api.GET("/attendance", s.attendance)
		api.GET("/status", s.status)
		api.POST("/check-in", s.checkIn)
		api.GET("/stats", s.stats)

		api.GET("/config", s.getConfig)
		api.POST("/config", s.updateConfig)

		api.GET("/holidays", s.listHolidays)
		api.POST("/holidays", s.addHoliday)
		api.DELETE("/holidays/:date", s.removeHoliday)
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	s.deps.Log.Info("listening on " + addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

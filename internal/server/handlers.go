package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/config"
	"github.com/matheuskafuri/attendwatch/internal/holiday"
	"github.com/matheuskafuri/attendwatch/internal/ingest"
	"github.com/matheuskafuri/attendwatch/internal/stats"
)

func (s *Server) startScrape(c *gin.Context) {
	done, err := s.deps.Runner.Start(context.WithoutCancel(c.Request.Context()))
	if errors.Is(err, ingest.ErrAlreadyRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": "A scrape is already in progress"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start scrape"})
		return
	}
	go func() {
		if res := <-done; res.Err != nil {
			s.deps.Log.Warn("scrape failed", res.Err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"message": "Scrape started"})
}

func (s *Server) scrapeStatus(c *gin.Context) {
	st, err := s.deps.Progress.Load(c.Request.Context())
	if err != nil {
		s.deps.Log.Error("reading progress", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read scrape status"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// scrapeStatusStream pushes progress as server-sent events until a terminal
// value is sent. With no run in flight only the stored value is sent, since a
// non-terminal one is left over from a run that died.
func (s *Server) scrapeStatusStream(c *gin.Context) {
	ctx := c.Request.Context()
	updates, unsubscribe := s.deps.Broker.Subscribe()
	defer unsubscribe()

	current, err := s.deps.Progress.Load(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read scrape status"})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("progress", current)
	c.Writer.Flush()
	if !s.deps.Runner.Running() {
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case st, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("progress", st)
			return !st.Terminal()
		}
	})
}

func (s *Server) attendance(c *gin.Context) {
	series, err := s.deps.Store.ReadAll(c.Request.Context())
	if err != nil {
		s.deps.Log.Error("reading attendance", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read attendance data"})
		return
	}
	c.JSON(http.StatusOK, series.Sorted())
}

func (s *Server) status(c *gin.Context) {
	series, err := s.deps.Store.ReadAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read attendance data"})
		return
	}
	cfg := s.deps.Config.Get()
	today := attendance.Today(s.deps.Now(), cfg.Location())
	_, scraped := series.Find(today)
	c.JSON(http.StatusOK, gin.H{
		"isScrapedToday": scraped,
		"running":        s.deps.Runner.Running(),
		"lastFetched":    series.LastFetched(),
	})
}

func (s *Server) checkIn(c *gin.Context) {
	if s.deps.Scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Automatic fetching is disabled"})
		return
	}
	d, err := s.deps.Scheduler.CheckIn(c.Request.Context())
	if err != nil {
		s.deps.Log.Error("check-in", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate auto-fetch"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) stats(c *gin.Context) {
	cfg := s.deps.Config.Get()
	month := c.DefaultQuery("month", s.deps.Now().In(cfg.Location()).Format("2006-01"))

	series, err := s.deps.Store.ReadAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read attendance data"})
		return
	}
	holidays, err := s.deps.Holidays.Dates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read holidays"})
		return
	}
	m, err := stats.Month(series, month, holidays, cfg.WeekendDays())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

type configResponse struct {
	Username      string `json:"username"`
	CalendarOnly  bool   `json:"calendarOnly"`
	Notifications bool   `json:"notifications"`
	PasswordSet   bool   `json:"passwordSet"`
}

type configRequest struct {
	Username      *string `json:"username"`
	Password      *string `json:"password"`
	CalendarOnly  *bool   `json:"calendarOnly"`
	Notifications *bool   `json:"notifications"`
}

func toConfigResponse(cfg *config.Config) configResponse {
	return configResponse{
		Username:      cfg.Username,
		CalendarOnly:  cfg.CalendarOnly,
		Notifications: cfg.Notifications,
		PasswordSet:   cfg.Password != "",
	}
}

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, toConfigResponse(s.deps.Config.Get()))
}

// updateConfig applies only the fields present in the body. An empty
// password leaves the stored one unchanged.
func (s *Server) updateConfig(c *gin.Context) {
	var req configRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username cannot be empty"})
		return
	}

	cfg, err := s.deps.Config.Update(func(cfg *config.Config) {
		if req.Username != nil {
			cfg.Username = strings.TrimSpace(*req.Username)
		}
		if req.Password != nil && *req.Password != "" {
			cfg.Password = *req.Password
		}
		if req.CalendarOnly != nil {
			cfg.CalendarOnly = *req.CalendarOnly
		}
		if req.Notifications != nil {
			cfg.Notifications = *req.Notifications
		}
	})
	if err != nil {
		s.deps.Log.Error("saving config", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save configuration"})
		return
	}
	c.JSON(http.StatusOK, toConfigResponse(cfg))
}

func (s *Server) listHolidays(c *gin.Context) {
	hs, err := s.deps.Holidays.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read holidays"})
		return
	}
	c.JSON(http.StatusOK, hs)
}

type holidayRequest struct {
	Date string `json:"date" binding:"required"`
	To   string `json:"to"`
	Name string `json:"name" binding:"required"`
}

func (s *Server) addHoliday(c *gin.Context) {
	var req holidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date and name are required"})
		return
	}

	var (
		added []holiday.Holiday
		err   error
	)
	if req.To != "" {
		added, err = s.deps.Holidays.AddRange(req.Date, req.To, req.Name)
	} else {
		h := holiday.Holiday{Date: req.Date, Name: strings.TrimSpace(req.Name)}
		if err = s.deps.Holidays.Add(h); err == nil {
			added = []holiday.Holiday{h}
		}
	}
	switch {
	case errors.Is(err, holiday.ErrExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Holiday already exists for this date"})
	case errors.Is(err, holiday.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		s.deps.Log.Error("adding holiday", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save holiday"})
	default:
		c.JSON(http.StatusCreated, added)
	}
}

func (s *Server) removeHoliday(c *gin.Context) {
	err := s.deps.Holidays.Remove(c.Param("date"))
	switch {
	case errors.Is(err, holiday.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Holiday not found"})
	case err != nil:
		s.deps.Log.Error("removing holiday", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete holiday"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Holiday deleted"})
	}
}

package analytics

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler exposes the analytics HTTP surface: a public view beacon and an
// admin stats endpoint.
type Handler struct {
	store          *Store
	collectLimiter *rateLimiter
}

// NewHandler creates an analytics Handler backed by the given store.
func NewHandler(store *Store) *Handler {
	return &Handler{
		store:          store,
		collectLimiter: newRateLimiter(60, time.Minute),
	}
}

// RegisterRoutes mounts the beacon on the public group and the stats
// endpoint behind the provided admin middleware.
func (h *Handler) RegisterRoutes(public *echo.Group, admin *echo.Group) {
	public.POST("/api/analytics/view", h.handleView)
	admin.GET("/api/analytics/stats", h.handleStats)
}

type viewPayload struct {
	Path     string `json:"path"`
	Referrer string `json:"referrer"`
}

func (h *Handler) handleView(c echo.Context) error {
	if !h.collectLimiter.allow(c.RealIP()) {
		return c.NoContent(http.StatusTooManyRequests)
	}
	if IsBot(c.Request().UserAgent()) {
		return c.NoContent(http.StatusNoContent)
	}
	var p viewPayload
	if err := c.Bind(&p); err != nil || !strings.HasPrefix(p.Path, "/") {
		return c.NoContent(http.StatusBadRequest)
	}
	v := &Visit{
		Path:      p.Path,
		IPHash:    HashIP(c.RealIP()),
		Referrer:  CleanReferrer(p.Referrer, c.Request().Host),
		Timestamp: time.Now(),
	}
	if err := h.store.SaveVisit(v); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) handleStats(c echo.Context) error {
	days := 30
	switch c.QueryParam("period") {
	case "7d":
		days = 7
	case "90d":
		days = 90
	case "365d":
		days = 365
	}
	to := time.Now()
	from := to.AddDate(0, 0, -days)
	stats, err := h.store.GetStats(from, to, 20)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

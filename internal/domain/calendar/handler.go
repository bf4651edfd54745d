package calendar

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slimclinic/slimclinic/internal/platform/auth"
)

type Handler struct {
	consolidator *Consolidator
}

func NewHandler(consolidator *Consolidator) *Handler {
	return &Handler{consolidator: consolidator}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleFrontDesk))
	readGroup.GET("/calendar", h.GetMonth)
	readGroup.GET("/calendar/day", h.GetDay)
}

// GetMonth loads the padded window around ?month=YYYY-MM and returns
// the consolidated day-bucketed events.
func (h *Handler) GetMonth(c echo.Context) error {
	raw := c.QueryParam("month")
	if raw == "" {
		raw = time.Now().Format("2006-01")
	}
	anchor, err := time.ParseInLocation("2006-01", raw, time.Local)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "month must be YYYY-MM")
	}
	if err := h.consolidator.LoadRange(c.Request().Context(), anchor); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"days":    h.consolidator.Days(),
		"loading": h.consolidator.Loading(),
		"load":    h.consolidator.LastLoad(),
	})
}

// GetDay returns the consolidated events for ?date=YYYY-MM-DD from the
// last loaded window without refetching.
func (h *Handler) GetDay(c echo.Context) error {
	date, ok := NormalizeDateOnly(c.QueryParam("date"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"date":   date.Format("2006-01-02"),
		"events": h.consolidator.EventsForDay(DayKeyFor(date)),
	})
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"futuresBot/internal/app"
	"futuresBot/internal/domain"
	"futuresBot/internal/ports"

	"github.com/gin-gonic/gin"
)

// TradingService is the part of app.TradingService the HTTP layer drives.
type TradingService interface {
	Analyze(ctx context.Context) (*domain.Decision, error)
	Execute(ctx context.Context) (*app.Outcome, error)
	UpdateTrailingStop(ctx context.Context) (*app.TrailingStopResult, error)
}

type Handler struct {
	service  TradingService
	trades   ports.TradeRepository
	statuses ports.StatusLogRepository
	logger   ports.Logger
}

func NewHandler(service TradingService, trades ports.TradeRepository, statuses ports.StatusLogRepository, logger ports.Logger) *Handler {
	return &Handler{
		service:  service,
		trades:   trades,
		statuses: statuses,
		logger:   logger,
	}
}

func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) Analyze(c *gin.Context) {
	decision, err := h.service.Analyze(c.Request.Context())
	if err != nil {
		h.fail(c, "analyze", err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

func (h *Handler) Execute(c *gin.Context) {
	outcome, err := h.service.Execute(c.Request.Context())
	if err != nil {
		h.fail(c, "execute", err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *Handler) UpdateTrailingStop(c *gin.Context) {
	result, err := h.service.UpdateTrailingStop(c.Request.Context())
	if err != nil {
		h.fail(c, "update-tsl", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Trades lists trade history newest first. Without ?limit all trades are returned.
func (h *Handler) Trades(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	trades, err := h.trades.FindRecentTrades(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "trades", err)
		return
	}
	c.JSON(http.StatusOK, trades)
}

func (h *Handler) LatestStatus(c *gin.Context) {
	log, err := h.statuses.FindLatestStatusLog(c.Request.Context())
	if err != nil {
		h.fail(c, "status-latest", err)
		return
	}
	if log == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "no status logs recorded yet"})
		return
	}
	c.JSON(http.StatusOK, log)
}

// fail writes a 500. A partially executed sequence also reports the accepted main order.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	h.logger.Error(c.Request.Context(), err, "Request failed", map[string]interface{}{"operation": op})
	body := gin.H{"detail": err.Error()}
	var perr *app.PartialExecutionError
	if errors.As(err, &perr) {
		body["main_order"] = perr.MainOrder
	}
	c.JSON(http.StatusInternalServerError, body)
}

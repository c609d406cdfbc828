package handler

import (
	"net/http"

	"github.com/evetabi/slot/internal/domain"
	"github.com/evetabi/slot/internal/service"
	"github.com/gin-gonic/gin"
)

// FeedHandler serves the public read-only endpoints: recent wins, pool
// stats and the paytable.
type FeedHandler struct {
	spinSvc *service.SpinService
}

// NewFeedHandler creates a FeedHandler.
func NewFeedHandler(spinSvc *service.SpinService) *FeedHandler {
	return &FeedHandler{spinSvc: spinSvc}
}

// RecentWins godoc
// GET /api/recent-wins
func (h *FeedHandler) RecentWins(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"wins": h.spinSvc.RecentWins()})
}

// PoolStats godoc
// GET /api/pool-stats
func (h *FeedHandler) PoolStats(c *gin.Context) {
	respondSuccess(c, http.StatusOK, h.spinSvc.PoolStats())
}

// paytableEntry is one catalog row with its draw probability.
type paytableEntry struct {
	domain.Symbol
	Probability float64 `json:"probability"`
}

// Symbols godoc
// GET /api/symbols
func (h *FeedHandler) Symbols(c *gin.Context) {
	cat := h.spinSvc.Catalog()
	out := make([]paytableEntry, 0, cat.Len())
	for _, s := range cat.Symbols() {
		out = append(out, paytableEntry{Symbol: s, Probability: cat.Probability(s.ID)})
	}
	respondSuccess(c, http.StatusOK, gin.H{"symbols": out})
}

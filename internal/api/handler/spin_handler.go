package handler

import (
	"net/http"

	"github.com/evetabi/slot/internal/config"
	"github.com/evetabi/slot/internal/domain"
	"github.com/evetabi/slot/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SpinHandler serves the spin endpoint.
type SpinHandler struct {
	spinSvc *service.SpinService
	cfg     *config.Config
}

// NewSpinHandler creates a SpinHandler.
func NewSpinHandler(spinSvc *service.SpinService, cfg *config.Config) *SpinHandler {
	return &SpinHandler{spinSvc: spinSvc, cfg: cfg}
}

// spinRequest is the POST /api/spin body. walletAddress may be omitted.
type spinRequest struct {
	WalletAddress string  `json:"walletAddress"`
	BetAmount     float64 `json:"betAmount" binding:"required,gt=0"`
}

// Spin godoc
// POST /api/spin
// Body: {"walletAddress":"0x…","betAmount":0.1}
func (h *SpinHandler) Spin(c *gin.Context) {
	var body spinRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	bet := decimal.NewFromFloat(body.BetAmount)
	g := h.cfg.Game
	if bet.LessThan(g.RequestMinBet) || bet.GreaterThan(g.RequestMaxBet) {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION",
			"betAmount must be between "+g.RequestMinBet.String()+" and "+g.RequestMaxBet.String())
		return
	}

	out, err := h.spinSvc.Spin(c.Request.Context(), domain.SpinRequest{
		Wallet: body.WalletAddress,
		Bet:    bet,
	})
	if err != nil {
		respondSpinError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, out)
}

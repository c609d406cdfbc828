package handler

import (
	"net/http"

	"github.com/evetabi/slot/internal/service"
	"github.com/gin-gonic/gin"
)

// WalletHandler serves balance lookups.
type WalletHandler struct {
	spinSvc *service.SpinService
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(spinSvc *service.SpinService) *WalletHandler {
	return &WalletHandler{spinSvc: spinSvc}
}

// GetBalance godoc
// GET /api/balance/:address
// Unseen wallets are created at the starting balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	address := c.Param("address")
	respondSuccess(c, http.StatusOK, gin.H{
		"address": address,
		"balance": h.spinSvc.GetBalance(address),
	})
}

package handler

import (
	"errors"
	"net/http"

	"github.com/evetabi/slot/internal/domain"
	"github.com/gin-gonic/gin"
)

// ──────────────────────────────────────────────────────────────────────────────
// Standard response helpers
// ──────────────────────────────────────────────────────────────────────────────

// respondSuccess writes {"success": true, "data": data} with the given status.
func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError writes {"success": false, "error": msg, "code": code}.
func respondError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   msg,
		"code":    code,
	})
}

// respondSpinError maps engine errors onto the envelope. Only user-correctable
// errors are surfaced verbatim.
func respondSpinError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidBet):
		respondError(c, http.StatusBadRequest, "ERR_INVALID_BET", err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		respondError(c, http.StatusPaymentRequired, "ERR_INSUFFICIENT_BALANCE", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", domain.ErrInternal.Error())
	}
}

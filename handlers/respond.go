package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pettycash-api/models"
	"pettycash-api/utils"
)

// respondLedgerError maps ledger errors onto HTTP statuses. Validation
// problems and insufficient funds are the caller's to fix; lock
// timeouts are retryable; anything else is internal.
func respondLedgerError(c *gin.Context, err error) {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
		return
	}

	var funds *models.InsufficientFundsError
	if errors.As(err, &funds) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     funds.Error(),
			"available": funds.Available,
			"requested": funds.Requested,
		})
		return
	}

	if errors.Is(err, models.ErrLockTimeout) {
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Wallet is busy, please retry"})
		return
	}

	if errors.Is(err, models.ErrWalletNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No wallet configured"})
		return
	}

	if errors.Is(err, models.ErrEntryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	utils.SafeError("ledger request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pettycash-api/middleware"
	"pettycash-api/models"
	"pettycash-api/services"
	"pettycash-api/store"
)

type DashboardHandler struct {
	Store      store.LedgerStore
	Dashboards *services.DashboardService
}

// GetDashboard returns a fresh snapshot for the caller's org wallet.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wallet, err := h.Store.WalletByOwner(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No wallet configured"})
			return
		}
		respondLedgerError(c, err)
		return
	}

	snapshot, err := h.Dashboards.ComputeSnapshot(c.Request.Context(), wallet.ID, time.Now())
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

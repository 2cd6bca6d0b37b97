package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pettycash-api/middleware"
	"pettycash-api/models"
	"pettycash-api/services"
	"pettycash-api/store"
)

type WalletHandler struct {
	Store  store.LedgerStore
	Ledger *services.LedgerService
}

// GetWallet returns the caller's org wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wallet, err := h.Store.WalletByOwner(c.Request.Context(), userID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// TopUp credits a wallet. Only the owner of the wallet's organization
// may top it up.
func (h *WalletHandler) TopUp(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	walletID := c.Param("id")
	ctx := c.Request.Context()

	wallet, err := h.Store.WalletByID(ctx, walletID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	org, err := h.Store.OrganizationByID(ctx, wallet.OrganizationID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	if org.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to top up this wallet"})
		return
	}

	var req models.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	if _, err := h.Ledger.RecordTopUp(ctx, userID, walletID, req.Amount); err != nil {
		respondLedgerError(c, err)
		return
	}

	// Re-read so the response carries the post-credit balance.
	wallet, err = h.Store.WalletByID(ctx, walletID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pettycash-api/middleware"
	"pettycash-api/models"
	"pettycash-api/services"
	"pettycash-api/store"
)

type ExpenseHandler struct {
	Store  store.LedgerStore
	Ledger *services.LedgerService
}

// ListExpenses returns the caller's entries, newest first.
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entries, err := h.Store.EntriesByUser(c.Request.Context(), userID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// CreateExpense records an expense against the resolved wallet.
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.Ledger.RecordExpense(c.Request.Context(), userID,
		req.CategoryID, req.Note, req.Amount, req.EffectiveDate)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// DeleteExpense removes one of the caller's own entries, reversing its
// balance effect.
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.Ledger.DeleteEntry(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

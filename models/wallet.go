package models

import (
	"time"
)

// Wallet holds the single shared petty-cash balance of an organization.
// The balance is mutated only inside a ledger transaction that also
// appends the matching entry; it is never recomputed from entries
// outside of verification.
type Wallet struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Balance        Money     `json:"balance"`
	LastUpdated    time.Time `json:"last_updated"`
	CreatedAt      time.Time `json:"created_at"`
}

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name" binding:"required"`
}

type TopUpRequest struct {
	Amount Money `json:"amount" binding:"required"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

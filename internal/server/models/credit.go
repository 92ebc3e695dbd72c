package models

import (
	"time"

	"github.com/dmitrijs2005/brandforge/internal/tiers"
)

// UnlimitedBalance marks an account that is never charged.
const UnlimitedBalance int64 = -1

type CreditAccount struct {
	UserID      string     `json:"userId"`
	Tier        tiers.Name `json:"tier"`
	Balance     int64      `json:"balance"`
	TotalEarned int64      `json:"totalEarned"`
	TotalSpent  int64      `json:"totalSpent"`
	ResetDate   *time.Time `json:"resetDate,omitempty"`
	LastUpdated time.Time  `json:"lastUpdated"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (a *CreditAccount) Unlimited() bool {
	return a.Balance == UnlimitedBalance
}

// CanAfford reports whether cost can be deducted right now.
func (a *CreditAccount) CanAfford(cost int64) bool {
	if a.Unlimited() {
		return true
	}
	return a.Balance >= cost
}

// DueForReset reports whether a replenishing account has reached its reset date.
func (a *CreditAccount) DueForReset(now time.Time) bool {
	return a.ResetDate != nil && !now.Before(*a.ResetDate)
}

type TransactionKind string

const (
	TransactionEarn      TransactionKind = "EARN"
	TransactionSpend     TransactionKind = "SPEND"
	TransactionReset     TransactionKind = "RESET"
	TransactionReplenish TransactionKind = "REPLENISH"
)

type CreditTransaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Kind         TransactionKind `json:"kind"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balanceAfter"`
	Reason       string          `json:"reason,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

package proto

import (
	"time"

	"github.com/dmitrijs2005/brandforge/internal/design"
	"github.com/dmitrijs2005/brandforge/internal/diff"
	"github.com/dmitrijs2005/brandforge/internal/refine"
)

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type GenerateRequest struct {
	BrandDescription string `json:"brandDescription"`
	Tier             string `json:"tier,omitempty"`
}

type GenerateResponse struct {
	Artifact         *design.Artifact `json:"artifact"`
	CreditsRemaining int64            `json:"creditsRemaining"`
}

type RefineRequest struct {
	ParentVersionID  string              `json:"parentVersionId,omitempty"`
	PreviousArtifact *design.Artifact    `json:"previousArtifact,omitempty"`
	Constraints      *refine.Constraints `json:"constraints,omitempty"`
	Instruction      string              `json:"instruction,omitempty"`
}

type RefineResponse struct {
	RefinedArtifact  *design.Artifact `json:"refinedArtifact"`
	Comparison       diff.Comparison  `json:"comparison"`
	Explanation      string           `json:"explanation"`
	Degraded         bool             `json:"degraded"`
	Conflicts        []string         `json:"conflicts,omitempty"`
	Applied          []string         `json:"applied,omitempty"`
	Skipped          []string         `json:"skipped,omitempty"`
	CreditsRemaining int64            `json:"creditsRemaining"`
}

type GetBalanceRequest struct{}

type GetBalanceResponse struct {
	Tier        string     `json:"tier"`
	Balance     int64      `json:"balance"`
	Unlimited   bool       `json:"unlimited"`
	TotalEarned int64      `json:"totalEarned"`
	TotalSpent  int64      `json:"totalSpent"`
	ResetDate   *time.Time `json:"resetDate,omitempty"`
}

type GetArtifactRequest struct {
	ID string `json:"id"`
}

type CompareRequest struct {
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
}

type CompareResponse struct {
	Comparison diff.Comparison `json:"comparison"`
}

package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/design"
	"github.com/dmitrijs2005/brandforge/internal/diff"
	"github.com/dmitrijs2005/brandforge/internal/refine"
	"github.com/go-playground/validator/v10"
)

type generateRequest struct {
	BrandDescription string `json:"brandDescription" validate:"required"`
	Tier             string `json:"tier" validate:"omitempty,max=32"`
}

type generateResponse struct {
	Artifact         *design.Artifact `json:"artifact"`
	CreditsRemaining int64            `json:"creditsRemaining"`
}

type refineRequest struct {
	PreviousArtifact *design.Artifact   `json:"previousArtifact"`
	ParentVersionID  string             `json:"parentVersionId" validate:"required_without=PreviousArtifact,max=64"`
	Constraints      *refine.Constraints `json:"constraints"`
	Instruction      string             `json:"instruction" validate:"required_without=Constraints"`
}

type refineResponse struct {
	RefinedArtifact  *design.Artifact `json:"refinedArtifact"`
	Comparison       diff.Comparison  `json:"comparison"`
	Explanation      string           `json:"explanation"`
	Version          int              `json:"version"`
	Degraded         bool             `json:"degraded"`
	Conflicts        []string         `json:"conflicts,omitempty"`
	Applied          []string         `json:"applied,omitempty"`
	Skipped          []string         `json:"skipped,omitempty"`
	CreditsRemaining int64            `json:"creditsRemaining"`
}

type balanceResponse struct {
	UserID      string  `json:"userId"`
	Tier        string  `json:"tier"`
	Balance     int64   `json:"balance"`
	Unlimited   bool    `json:"unlimited"`
	TotalEarned int64   `json:"totalEarned"`
	TotalSpent  int64   `json:"totalSpent"`
	ResetDate   *string `json:"resetDate,omitempty"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and runs its validate tags.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return common.NewValidationError("payload", fmt.Sprintf("exceeds %d bytes", tooBig.Limit))
		case errors.Is(err, io.EOF):
			return common.NewValidationError("payload", "request body is empty")
		default:
			return common.NewValidationError("payload", "malformed JSON")
		}
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return common.NewValidationError(verrs[0].Field(), describe(verrs[0]))
		}
		return common.NewValidationError("payload", "invalid")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is absent", lowerFirst(fe.Param()))
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

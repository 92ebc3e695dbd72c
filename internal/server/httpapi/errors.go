package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/brandforge/internal/common"
)

type errorBody struct {
	Kind     common.Kind `json:"kind"`
	Message  string      `json:"message"`
	Required *int64      `json:"required,omitempty"`
	Balance  *int64      `json:"balance,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func statusFor(k common.Kind) int {
	switch k {
	case common.KindUnauthorized:
		return http.StatusUnauthorized
	case common.KindValidation:
		return http.StatusBadRequest
	case common.KindInsufficientCredits:
		return http.StatusPaymentRequired
	case common.KindGenerationTimeout:
		return http.StatusRequestTimeout
	case common.KindInvalidAIResponse:
		return http.StatusBadGateway
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := common.KindOf(err)
	body := errorBody{Kind: kind, Message: common.PublicMessage(err)}
	var ice *common.InsufficientCreditsError
	if errors.As(err, &ice) {
		body.Required = &ice.Required
		body.Balance = &ice.Balance
	}
	writeJSON(w, statusFor(kind), errorEnvelope{Error: body})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

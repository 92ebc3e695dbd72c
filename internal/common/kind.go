package common

import "errors"

// Kind is the machine-readable error class reported to API clients.
type Kind string

const (
	KindUnauthorized        Kind = "Unauthorized"
	KindValidation          Kind = "ValidationError"
	KindInsufficientCredits Kind = "InsufficientCredits"
	KindGenerationTimeout   Kind = "GenerationTimeout"
	KindInvalidAIResponse   Kind = "InvalidAIResponse"
	KindNotFound            Kind = "NotFound"
	KindRateLimited         Kind = "RateLimited"
	KindInternal            Kind = "InternalError"
)

// KindOf classifies err. Unknown errors, persistence failures and caller
// cancellations are all reported as KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrorUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrInsufficientCredits):
		return KindInsufficientCredits
	case errors.Is(err, ErrGenerationTimeout):
		return KindGenerationTimeout
	case errors.Is(err, ErrInvalidAIResponse):
		return KindInvalidAIResponse
	case errors.Is(err, ErrorNotFound):
		return KindNotFound
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	default:
		return KindInternal
	}
}

// PublicMessage returns a client-safe message for err. Only validation and
// credit errors expose their own text; everything else gets a fixed message
// so provider and database details never leave the process.
func PublicMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var ice *InsufficientCreditsError
	if errors.As(err, &ice) {
		return ice.Error()
	}

	switch KindOf(err) {
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "invalid request"
	case KindInsufficientCredits:
		return "insufficient credits"
	case KindGenerationTimeout:
		return "generation took too long; try again with a simpler description"
	case KindInvalidAIResponse:
		return "the design generator returned an unusable response; please retry"
	case KindNotFound:
		return "not found"
	case KindRateLimited:
		return "too many requests"
	default:
		return "internal error"
	}
}

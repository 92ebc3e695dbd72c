package grpc

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/brandforge/internal/common"
	pb "github.com/dmitrijs2005/brandforge/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func codeFor(k common.Kind) codes.Code {
	switch k {
	case common.KindUnauthorized:
		return codes.Unauthenticated
	case common.KindValidation:
		return codes.InvalidArgument
	case common.KindInsufficientCredits:
		return codes.FailedPrecondition
	case common.KindGenerationTimeout:
		return codes.DeadlineExceeded
	case common.KindInvalidAIResponse:
		return codes.Unavailable
	case common.KindNotFound:
		return codes.NotFound
	case common.KindRateLimited:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}

// toStatus converts a service error into a gRPC status error with a
// client-safe message.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	kind := common.KindOf(err)
	if kind == common.KindInternal {
		s.logger.Error(ctx, "request failed", "error", err)
	}
	var ice *common.InsufficientCreditsError
	if errors.As(err, &ice) {
		_ = grpc.SetTrailer(ctx, metadata.Pairs(
			pb.TrailerCreditsRequired, strconv.FormatInt(ice.Required, 10),
			pb.TrailerCreditsBalance, strconv.FormatInt(ice.Balance, 10),
		))
	}
	return status.Error(codeFor(kind), common.PublicMessage(err))
}

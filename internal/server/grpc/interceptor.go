package grpc

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/common"
	pb "github.com/dmitrijs2005/brandforge/internal/proto"
	"github.com/dmitrijs2005/brandforge/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// public methods skip authentication.
var public = map[string]bool{
	pb.DesignService_Ping_FullMethodName: true,
	"/grpc.health.v1.Health/Check":       true,
	"/grpc.health.v1.Health/Watch":       true,
	"/grpc.health.v1.Health/List":        true,
}

// tokenFromMetadata accepts either "authorization: Bearer <jwt>" or the
// bare access_token key.
func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get("authorization"); len(v) > 0 {
		if t := auth.BearerToken(v[0]); t != "" {
			return t
		}
	}
	if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if public[info.FullMethod] {
		return handler(ctx, req)
	}

	accessToken := tokenFromMetadata(ctx)
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	return handler(auth.WithClaims(ctx, claims), req)
}

func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if s.gate == nil || !ok {
		return handler(ctx, req)
	}
	allowed, resetAt := s.gate.Allow(userID)
	if !allowed {
		wait := math.Max(1, math.Ceil(time.Until(resetAt).Seconds()))
		_ = grpc.SetTrailer(ctx, metadata.Pairs("retry-after", strconv.Itoa(int(wait))))
		return nil, status.Error(codes.ResourceExhausted, common.PublicMessage(common.ErrRateLimited))
	}
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"ms", time.Since(start).Milliseconds())
	return resp, err
}

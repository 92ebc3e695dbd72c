package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/design"
	pb "github.com/dmitrijs2005/brandforge/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.DesignServiceClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete("authorization")
	md.Set("authorization", "Bearer "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewDesignClient(endpointURL, accessToken string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewDesignServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err, nil)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) Generate(ctx context.Context, brandDescription, tier string) (*pb.GenerateResponse, error) {

	var trailer metadata.MD
	resp, err := s.client.Generate(ctx, &pb.GenerateRequest{BrandDescription: brandDescription, Tier: tier}, grpc.Trailer(&trailer))
	if err != nil {
		return nil, s.mapError(err, trailer)
	}
	return resp, nil

}

func (s *GRPCClient) Refine(ctx context.Context, req *pb.RefineRequest) (*pb.RefineResponse, error) {

	var trailer metadata.MD
	resp, err := s.client.Refine(ctx, req, grpc.Trailer(&trailer))
	if err != nil {
		return nil, s.mapError(err, trailer)
	}
	return resp, nil

}

func (s *GRPCClient) Balance(ctx context.Context) (*pb.GetBalanceResponse, error) {

	resp, err := s.client.GetBalance(ctx, &pb.GetBalanceRequest{})
	if err != nil {
		return nil, s.mapError(err, nil)
	}
	return resp, nil

}

func (s *GRPCClient) Artifact(ctx context.Context, id string) (*design.Artifact, error) {

	resp, err := s.client.GetArtifact(ctx, &pb.GetArtifactRequest{ID: id})
	if err != nil {
		return nil, s.mapError(err, nil)
	}
	return resp, nil

}

func (s *GRPCClient) Compare(ctx context.Context, fromID, toID string) (*pb.CompareResponse, error) {

	resp, err := s.client.Compare(ctx, &pb.CompareRequest{FromID: fromID, ToID: toID})
	if err != nil {
		return nil, s.mapError(err, nil)
	}
	return resp, nil

}

func (s *GRPCClient) mapError(err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return common.NewValidationError("", st.Message())
	case codes.FailedPrecondition:
		required, okR := trailerInt(trailer, pb.TrailerCreditsRequired)
		balance, okB := trailerInt(trailer, pb.TrailerCreditsBalance)
		if okR && okB {
			return &common.InsufficientCreditsError{Required: required, Balance: balance}
		}
		return fmt.Errorf("rpc error: %w", err)
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func trailerInt(md metadata.MD, key string) (int64, bool) {
	v := md.Get(key)
	if len(v) == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(v[0], 10, 64)
	return n, err == nil
}

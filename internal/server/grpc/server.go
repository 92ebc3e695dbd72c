package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/design"
	"github.com/dmitrijs2005/brandforge/internal/diff"
	"github.com/dmitrijs2005/brandforge/internal/logging"
	pb "github.com/dmitrijs2005/brandforge/internal/proto"
	"github.com/dmitrijs2005/brandforge/internal/server/models"
	"github.com/dmitrijs2005/brandforge/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Designs interface {
	Generate(ctx context.Context, userID, brandDescription, tier string) (*services.GenerationResult, error)
	Refine(ctx context.Context, userID string, req services.RefineRequest) (*services.RefinementResult, error)
	Get(ctx context.Context, userID, id string) (*design.Artifact, error)
	Compare(ctx context.Context, userID, fromID, toID string) (diff.Comparison, error)
}

type Credits interface {
	Account(ctx context.Context, userID string) (*models.CreditAccount, error)
}

// Gate is the per-user rate limiter shared with the HTTP API.
type Gate interface {
	Allow(key string) (bool, time.Time)
}

type GRPCServer struct {
	pb.UnimplementedDesignServiceServer
	address   string
	designs   Designs
	credits   Credits
	gate      Gate
	logger    logging.Logger
	jwtSecret []byte
}

type Option func(*GRPCServer)

func WithGate(g Gate) Option { return func(s *GRPCServer) { s.gate = g } }

func NewGRPCServer(a string, l logging.Logger, ds Designs, cs Credits, secretKey string, opts ...Option) *GRPCServer {
	if l == nil {
		l = logging.Nop()
	}
	s := &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		designs:   ds,
		credits:   cs,
		jwtSecret: []byte(secretKey),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// newServer builds the grpc.Server with interceptors and all services
// registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor, s.rateLimitInterceptor))
	pb.RegisterDesignServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}

package client

import (
	"context"

	"github.com/dmitrijs2005/brandforge/internal/design"
	pb "github.com/dmitrijs2005/brandforge/internal/proto"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Generate(ctx context.Context, brandDescription, tier string) (*pb.GenerateResponse, error)
	Refine(ctx context.Context, req *pb.RefineRequest) (*pb.RefineResponse, error)
	Balance(ctx context.Context) (*pb.GetBalanceResponse, error)
	Artifact(ctx context.Context, id string) (*design.Artifact, error)
	Compare(ctx context.Context, fromID, toID string) (*pb.CompareResponse, error)
}

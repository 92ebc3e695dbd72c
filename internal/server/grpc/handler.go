package grpc

import (
	"context"

	"github.com/dmitrijs2005/brandforge/internal/design"
	pb "github.com/dmitrijs2005/brandforge/internal/proto"
	"github.com/dmitrijs2005/brandforge/internal/server/auth"
	"github.com/dmitrijs2005/brandforge/internal/server/services"
)

func userID(ctx context.Context) string {
	id, _ := auth.UserIDFromContext(ctx)
	return id
}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {

	return &pb.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) Generate(ctx context.Context, req *pb.GenerateRequest) (*pb.GenerateResponse, error) {

	res, err := s.designs.Generate(ctx, userID(ctx), req.BrandDescription, req.Tier)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.GenerateResponse{Artifact: res.Artifact, CreditsRemaining: res.CreditsRemaining}, nil

}

func (s *GRPCServer) Refine(ctx context.Context, req *pb.RefineRequest) (*pb.RefineResponse, error) {

	res, err := s.designs.Refine(ctx, userID(ctx), services.RefineRequest{
		ParentVersionID: req.ParentVersionID,
		Previous:        req.PreviousArtifact,
		Constraints:     req.Constraints,
		Instruction:     req.Instruction,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.RefineResponse{
		RefinedArtifact:  res.Refined,
		Comparison:       res.Comparison,
		Explanation:      res.Explanation,
		Degraded:         res.Degraded,
		Conflicts:        res.Conflicts,
		Applied:          res.Applied,
		Skipped:          res.Skipped,
		CreditsRemaining: res.CreditsRemaining,
	}, nil

}

func (s *GRPCServer) GetBalance(ctx context.Context, req *pb.GetBalanceRequest) (*pb.GetBalanceResponse, error) {

	a, err := s.credits.Account(ctx, userID(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.GetBalanceResponse{
		Tier:        string(a.Tier),
		Balance:     a.Balance,
		Unlimited:   a.Unlimited(),
		TotalEarned: a.TotalEarned,
		TotalSpent:  a.TotalSpent,
		ResetDate:   a.ResetDate,
	}, nil

}

func (s *GRPCServer) GetArtifact(ctx context.Context, req *pb.GetArtifactRequest) (*design.Artifact, error) {

	a, err := s.designs.Get(ctx, userID(ctx), req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return a, nil

}

func (s *GRPCServer) Compare(ctx context.Context, req *pb.CompareRequest) (*pb.CompareResponse, error) {

	c, err := s.designs.Compare(ctx, userID(ctx), req.FromID, req.ToID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.CompareResponse{Comparison: c}, nil

}

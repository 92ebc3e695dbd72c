package proto

import (
	"context"

	"github.com/dmitrijs2005/brandforge/internal/design"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "brandforge.v1.DesignService"

// Trailer keys carrying the balance snapshot of an insufficient-credits
// rejection.
const (
	TrailerCreditsRequired = "credits-required"
	TrailerCreditsBalance  = "credits-balance"
)

const (
	DesignService_Ping_FullMethodName        = "/" + ServiceName + "/Ping"
	DesignService_Generate_FullMethodName    = "/" + ServiceName + "/Generate"
	DesignService_Refine_FullMethodName      = "/" + ServiceName + "/Refine"
	DesignService_GetBalance_FullMethodName  = "/" + ServiceName + "/GetBalance"
	DesignService_GetArtifact_FullMethodName = "/" + ServiceName + "/GetArtifact"
	DesignService_Compare_FullMethodName     = "/" + ServiceName + "/Compare"
)

// DesignServiceClient is the client API for DesignService.
type DesignServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	Generate(ctx context.Context, in *GenerateRequest, opts ...grpc.CallOption) (*GenerateResponse, error)
	Refine(ctx context.Context, in *RefineRequest, opts ...grpc.CallOption) (*RefineResponse, error)
	GetBalance(ctx context.Context, in *GetBalanceRequest, opts ...grpc.CallOption) (*GetBalanceResponse, error)
	GetArtifact(ctx context.Context, in *GetArtifactRequest, opts ...grpc.CallOption) (*design.Artifact, error)
	Compare(ctx context.Context, in *CompareRequest, opts ...grpc.CallOption) (*CompareResponse, error)
}

type designServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDesignServiceClient(cc grpc.ClientConnInterface) DesignServiceClient {
	return &designServiceClient{cc}
}

// invoke sends in as a Struct and decodes the Struct reply into out.
func (c *designServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	req, err := ToStruct(in)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	reply := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, req, reply, opts...); err != nil {
		return err
	}
	if err := FromStruct(reply, out); err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	return nil
}

func (c *designServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.invoke(ctx, DesignService_Ping_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *designServiceClient) Generate(ctx context.Context, in *GenerateRequest, opts ...grpc.CallOption) (*GenerateResponse, error) {
	out := new(GenerateResponse)
	if err := c.invoke(ctx, DesignService_Generate_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *designServiceClient) Refine(ctx context.Context, in *RefineRequest, opts ...grpc.CallOption) (*RefineResponse, error) {
	out := new(RefineResponse)
	if err := c.invoke(ctx, DesignService_Refine_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *designServiceClient) GetBalance(ctx context.Context, in *GetBalanceRequest, opts ...grpc.CallOption) (*GetBalanceResponse, error) {
	out := new(GetBalanceResponse)
	if err := c.invoke(ctx, DesignService_GetBalance_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *designServiceClient) GetArtifact(ctx context.Context, in *GetArtifactRequest, opts ...grpc.CallOption) (*design.Artifact, error) {
	out := new(design.Artifact)
	if err := c.invoke(ctx, DesignService_GetArtifact_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *designServiceClient) Compare(ctx context.Context, in *CompareRequest, opts ...grpc.CallOption) (*CompareResponse, error) {
	out := new(CompareResponse)
	if err := c.invoke(ctx, DesignService_Compare_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// DesignServiceServer is the server API for DesignService. Implementations
// must embed UnimplementedDesignServiceServer.
type DesignServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Generate(context.Context, *GenerateRequest) (*GenerateResponse, error)
	Refine(context.Context, *RefineRequest) (*RefineResponse, error)
	GetBalance(context.Context, *GetBalanceRequest) (*GetBalanceResponse, error)
	GetArtifact(context.Context, *GetArtifactRequest) (*design.Artifact, error)
	Compare(context.Context, *CompareRequest) (*CompareResponse, error)
	mustEmbedUnimplementedDesignServiceServer()
}

type UnimplementedDesignServiceServer struct{}

func (UnimplementedDesignServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedDesignServiceServer) Generate(context.Context, *GenerateRequest) (*GenerateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Generate not implemented")
}
func (UnimplementedDesignServiceServer) Refine(context.Context, *RefineRequest) (*RefineResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Refine not implemented")
}
func (UnimplementedDesignServiceServer) GetBalance(context.Context, *GetBalanceRequest) (*GetBalanceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetBalance not implemented")
}
func (UnimplementedDesignServiceServer) GetArtifact(context.Context, *GetArtifactRequest) (*design.Artifact, error) {
	return nil, status.Error(codes.Unimplemented, "method GetArtifact not implemented")
}
func (UnimplementedDesignServiceServer) Compare(context.Context, *CompareRequest) (*CompareResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Compare not implemented")
}
func (UnimplementedDesignServiceServer) mustEmbedUnimplementedDesignServiceServer() {}

func RegisterDesignServiceServer(s grpc.ServiceRegistrar, srv DesignServiceServer) {
	s.RegisterService(&DesignService_ServiceDesc, srv)
}

// unary builds a method handler that decodes the Struct request into In,
// runs the interceptor chain and call on the typed message, and encodes the
// reply back into a Struct.
func unary[In any, Out any](method string, call func(DesignServiceServer, context.Context, *In) (Out, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		wire := new(structpb.Struct)
		if err := dec(wire); err != nil {
			return nil, err
		}
		in := new(In)
		if err := FromStruct(wire, in); err != nil {
			return nil, status.Error(codes.InvalidArgument, "malformed request")
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DesignServiceServer), ctx, req.(*In))
		}
		var (
			out any
			err error
		)
		if interceptor == nil {
			out, err = handler(ctx, in)
		} else {
			out, err = interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: method}, handler)
		}
		if err != nil {
			return nil, err
		}
		reply, err := ToStruct(out)
		if err != nil {
			return nil, status.Error(codes.Internal, "encode reply")
		}
		return reply, nil
	}
}

var DesignService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DesignServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unary(DesignService_Ping_FullMethodName, DesignServiceServer.Ping)},
		{MethodName: "Generate", Handler: unary(DesignService_Generate_FullMethodName, DesignServiceServer.Generate)},
		{MethodName: "Refine", Handler: unary(DesignService_Refine_FullMethodName, DesignServiceServer.Refine)},
		{MethodName: "GetBalance", Handler: unary(DesignService_GetBalance_FullMethodName, DesignServiceServer.GetBalance)},
		{MethodName: "GetArtifact", Handler: unary(DesignService_GetArtifact_FullMethodName, DesignServiceServer.GetArtifact)},
		{MethodName: "Compare", Handler: unary(DesignService_Compare_FullMethodName, DesignServiceServer.Compare)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "brandforge/v1/design.proto",
}

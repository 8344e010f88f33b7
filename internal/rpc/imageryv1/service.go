// Package imageryv1 exposes the synthesizer over gRPC as the
// imagery.v1.Synthesizer service. Requests and responses use the protobuf
// well-known types so no generated message code is needed.
package imageryv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "imagery.v1.Synthesizer"

	SynthesizeMethod     = "/" + ServiceName + "/Synthesize"
	ListCategoriesMethod = "/" + ServiceName + "/ListCategories"
)

// Response header keys carrying artifact metadata alongside the image bytes.
// The category echoes caller input, so it travels as a binary header.
const (
	HeaderFilename      = "x-filename"
	HeaderContentType   = "x-content-type"
	HeaderWidth         = "x-width"
	HeaderHeight        = "x-height"
	HeaderCategory      = "x-category-bin"
	HeaderTemplate      = "x-template"
	HeaderColor         = "x-color"
	HeaderSeed          = "x-seed"
	HeaderPostprocessed = "x-postprocessed"
)

// SynthesizerServer is the server API for imagery.v1.Synthesizer.
type SynthesizerServer interface {
	Synthesize(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
	ListCategories(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// UnimplementedSynthesizerServer can be embedded for forward compatibility.
type UnimplementedSynthesizerServer struct{}

func (UnimplementedSynthesizerServer) Synthesize(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Synthesize not implemented")
}

func (UnimplementedSynthesizerServer) ListCategories(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListCategories not implemented")
}

// SynthesizerClient is the client API for imagery.v1.Synthesizer.
type SynthesizerClient interface {
	Synthesize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	ListCategories(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type synthesizerClient struct {
	cc grpc.ClientConnInterface
}

func NewSynthesizerClient(cc grpc.ClientConnInterface) SynthesizerClient {
	return &synthesizerClient{cc: cc}
}

func (c *synthesizerClient) Synthesize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, SynthesizeMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *synthesizerClient) ListCategories(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListCategoriesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterSynthesizerServer(s grpc.ServiceRegistrar, srv SynthesizerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func synthesizeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SynthesizerServer).Synthesize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SynthesizeMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SynthesizerServer).Synthesize(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listCategoriesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SynthesizerServer).ListCategories(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListCategoriesMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SynthesizerServer).ListCategories(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for imagery.v1.Synthesizer.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SynthesizerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Synthesize", Handler: synthesizeHandler},
		{MethodName: "ListCategories", Handler: listCategoriesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "imagery/v1/synthesizer.proto",
}

// Package pb describes the gccinv.Classifier grpc service.
// Messages are well-known protobuf Structs, see messages.go for their fields.
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ClassifierServiceName = "gccinv.Classifier"

	ClassifierParseFullMethodName               = "/gccinv.Classifier/Parse"
	ClassifierRestrictToOneSourceFullMethodName = "/gccinv.Classifier/RestrictToOneSource"
)

type ClassifierServiceClient interface {
	Parse(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RestrictToOneSource(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type classifierServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewClassifierServiceClient(cc grpc.ClientConnInterface) ClassifierServiceClient {
	return &classifierServiceClient{cc}
}

func (c *classifierServiceClient) Parse(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ClassifierParseFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *classifierServiceClient) RestrictToOneSource(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ClassifierRestrictToOneSourceFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type ClassifierServiceServer interface {
	Parse(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RestrictToOneSource(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedClassifierServiceServer is embedded into servers for forward compatibility.
type UnimplementedClassifierServiceServer struct{}

func (UnimplementedClassifierServiceServer) Parse(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Parse not implemented")
}

func (UnimplementedClassifierServiceServer) RestrictToOneSource(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RestrictToOneSource not implemented")
}

func RegisterClassifierServiceServer(s grpc.ServiceRegistrar, srv ClassifierServiceServer) {
	s.RegisterService(&ClassifierServiceDesc, srv)
}

func classifierParseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClassifierServiceServer).Parse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ClassifierParseFullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClassifierServiceServer).Parse(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func classifierRestrictToOneSourceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClassifierServiceServer).RestrictToOneSource(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ClassifierRestrictToOneSourceFullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClassifierServiceServer).RestrictToOneSource(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var ClassifierServiceDesc = grpc.ServiceDesc{
	ServiceName: ClassifierServiceName,
	HandlerType: (*ClassifierServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Parse",
			Handler:    classifierParseHandler,
		},
		{
			MethodName: "RestrictToOneSource",
			Handler:    classifierRestrictToOneSourceHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gccinv/classifier",
}

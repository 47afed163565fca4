package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"gccinv/internal/invocation"
	"gccinv/pb"

	"golang.org/x/net/proxy"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCClient asks a remote gccinv-server to classify command lines.
type GRPCClient struct {
	remoteHostPort string
	connection     *grpc.ClientConn
	callTimeout    time.Duration
	pb             pb.ClassifierServiceClient
}

func MakeGRPCClient(remoteHostPort string, socksProxyAddr string, callTimeout time.Duration) (*GRPCClient, error) {
	// this connection is non-blocking: it's created immediately
	// if the remote is not available, it will fail on request

	dialOpts := createDialOpts(socksProxyAddr)

	var remoteAddress string

	if socksProxyAddr != "" {
		remoteAddress = fmt.Sprintf("passthrough:%s", remoteHostPort)
	} else {
		remoteAddress = fmt.Sprintf("dns:///%s", remoteHostPort)
	}

	connection, err := grpc.NewClient(
		remoteAddress,
		dialOpts...,
	)

	if err != nil {
		return nil, err
	}

	return &GRPCClient{
		remoteHostPort: remoteHostPort,
		connection:     connection,
		callTimeout:    callTimeout,
		pb:             pb.NewClassifierServiceClient(connection),
	}, nil
}

func createDialOpts(socksProxyAddr string) []grpc.DialOption {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(),
	}

	if socksProxyAddr != "" {
		dialOpt, err := runInSocks5(socksProxyAddr)
		if err == nil {
			dialOpts = append(dialOpts, dialOpt)
		} else if logClient != nil {
			logClient.Error("socks5 proxy", socksProxyAddr, "ignored:", err)
		}
	}
	return dialOpts
}

func runInSocks5(proxyAddr string) (grpc.DialOption, error) {
	dialer, err := proxy.SOCKS5("unix", proxyAddr, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}

	customDialer := func(ctx context.Context, addr string) (net.Conn, error) {
		if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
			return contextDialer.DialContext(ctx, "tcp", addr)
		}
		return dialer.Dial("tcp", addr)
	}

	return grpc.WithContextDialer(customDialer), nil
}

func (grpcClient *GRPCClient) RemoteHostPort() string {
	return grpcClient.remoteHostPort
}

// Parse sends argv to the remote, see invocation.Parse.
func (grpcClient *GRPCClient) Parse(ctx context.Context, argv []string) (invocation.Record, error) {
	return grpcClient.call(ctx, grpcClient.pb.Parse, pb.MakeArgvRequest(argv))
}

// ParseCmdLine sends a build log line to the remote, see invocation.ParseCmdLine.
func (grpcClient *GRPCClient) ParseCmdLine(ctx context.Context, cmdLine string) (invocation.Record, error) {
	return grpcClient.call(ctx, grpcClient.pb.Parse, pb.MakeCmdLineRequest(cmdLine))
}

// RestrictToOneSource parses argv on the remote and narrows it to source.
func (grpcClient *GRPCClient) RestrictToOneSource(ctx context.Context, argv []string, source string) (invocation.Record, error) {
	return grpcClient.call(ctx, grpcClient.pb.RestrictToOneSource, pb.WithSource(pb.MakeArgvRequest(argv), source))
}

type classifierMethod func(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)

func (grpcClient *GRPCClient) call(ctx context.Context, method classifierMethod, request *structpb.Struct) (invocation.Record, error) {
	if grpcClient.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, grpcClient.callTimeout)
		defer cancel()
	}

	reply, err := method(ctx, request)
	if err != nil {
		return invocation.Record{}, err
	}
	return pb.StructToRecord(reply)
}

func (grpcClient *GRPCClient) Clear() {
	if grpcClient.connection != nil {
		_ = grpcClient.connection.Close()

		grpcClient.connection = nil
		grpcClient.pb = nil
	}
}

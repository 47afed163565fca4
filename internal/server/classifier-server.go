package server

import (
	"context"
	"errors"
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"

	"gccinv/internal/common"
	"gccinv/internal/invocation"
	"gccinv/pb"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ClassifierServer serves gccinv.Classifier grpc requests.
// Classification itself is a pure function, so handlers share nothing except counters.
type ClassifierServer struct {
	pb.UnimplementedClassifierServiceServer
	GRPCServer *grpc.Server

	MaxArgs int // requests with more tokens are rejected, 0 means no limit

	nParsed    atomic.Int64
	nMalformed atomic.Int64
}

func MakeClassifierServer(maxArgs int) *ClassifierServer {
	s := &ClassifierServer{
		GRPCServer: grpc.NewServer(),
		MaxArgs:    maxArgs,
	}
	pb.RegisterClassifierServiceServer(s.GRPCServer, s)
	return s
}

// StartGRPCListening is an entrypoint called from main() of gccinv-server.
// It serves all listeners and returns when all of them are closed (see QuitServerGracefully).
func (s *ClassifierServer) StartGRPCListening(listeners []net.Listener) error {
	if len(listeners) == 0 {
		return errors.New("nothing to listen")
	}

	var rLimit syscall.Rlimit
	_ = syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	logServer.Info(0, "gccinv-server started")
	logServer.Info(0, "env:", "listeners", len(listeners), "; ulimit -n", rLimit.Cur, "; num cpu", runtime.NumCPU(), "; version", common.GetVersion())

	errs := make([]error, len(listeners))
	wg := sync.WaitGroup{}
	for i, listener := range listeners {
		logServer.Info(0, "listening", listener.Addr().Network(), listener.Addr().String())
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.GRPCServer.Serve(listener)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
	}
	return nil
}

// QuitServerGracefully waits for active requests and stops accepting new connections.
// After it, StartGRPCListening returns, and main() continues.
func (s *ClassifierServer) QuitServerGracefully() {
	logServer.Info(0, "graceful stop...", "parsed", s.nParsed.Load(), "; malformed", s.nMalformed.Load())
	s.GRPCServer.GracefulStop()
}

// Parse is a grpc handler.
// The request carries either "argv" or "cmdline", the reply is an invocation.Record as a Struct.
func (s *ClassifierServer) Parse(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	inv, err := s.parseRequest(in)
	if err != nil {
		return nil, err
	}
	logServer.Info(2, "parsed", inv)
	return pb.RecordToStruct(inv.Record()), nil
}

// RestrictToOneSource is a grpc handler.
// Like Parse, but the reply describes the invocation narrowed to the requested "source".
func (s *ClassifierServer) RestrictToOneSource(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	source, ok := pb.RequestSource(in)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "field %q is required", pb.FieldSource)
	}

	inv, err := s.parseRequest(in)
	if err != nil {
		return nil, err
	}

	restricted, err := inv.RestrictToOneSource(source)
	if err != nil {
		return nil, s.onMalformed(err)
	}
	logServer.Info(2, "restricted", restricted)
	return pb.RecordToStruct(restricted.Record()), nil
}

func (s *ClassifierServer) parseRequest(in *structpb.Struct) (*invocation.Invocation, error) {
	if s.MaxArgs > 0 {
		if argv := in.GetFields()[pb.FieldArgv].GetListValue(); argv != nil && len(argv.GetValues()) > s.MaxArgs {
			return nil, status.Errorf(codes.ResourceExhausted, "too many arguments: %d, limit %d", len(argv.GetValues()), s.MaxArgs)
		}
	}

	inv, err := pb.ParseRequest(in)
	if err != nil {
		return nil, s.onMalformed(err)
	}
	s.nParsed.Add(1)
	return inv, nil
}

func (s *ClassifierServer) onMalformed(err error) error {
	if errors.Is(err, invocation.ErrMalformedInvocation) {
		s.nMalformed.Add(1)
		logServer.Info(1, "malformed request:", err)
	} else {
		logServer.Error("bad request:", err)
	}
	return status.Error(codes.InvalidArgument, err.Error())
}

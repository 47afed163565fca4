package client

import (
	"context"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"gccinv/internal/common"
	"gccinv/internal/invocation"
	"gccinv/internal/server"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMain(m *testing.M) {
	logClient = common.MakeLoggerForWriter("gccinv-test", io.Discard, 0)
	if err := server.MakeLoggerServer("stderr", -1); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func startServer(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("can't listen: %v", err)
	}
	s := server.MakeClassifierServer(0)
	go func() {
		_ = s.StartGRPCListening([]net.Listener{listener})
	}()
	t.Cleanup(s.QuitServerGracefully)
	return listener.Addr().String()
}

func TestGRPCClientRoundTrip(t *testing.T) {
	addr := startServer(t)
	grpcClient, err := MakeGRPCClient(addr, "", 10*time.Second)
	if err != nil {
		t.Fatalf("MakeGRPCClient() returned error: %v", err)
	}
	defer grpcClient.Clear()

	argv := []string{"/usr/bin/c++", "-DPYSIDE_EXPORTS", "-I/usr/include/QtGui", "-O2", "-o", "out.o", "-c", "a.cpp", "b.cpp"}
	local, err := invocation.Parse(argv)
	if err != nil {
		t.Fatal(err)
	}

	record, err := grpcClient.Parse(context.Background(), argv)
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}
	if diff := cmp.Diff(local.Record(), record); diff != "" {
		t.Errorf("remote Parse() differs from local (-local +remote):\n%s", diff)
	}

	record, err = grpcClient.ParseCmdLine(context.Background(), "gcc -DX=\"1 2\" x.c")
	if err != nil {
		t.Fatalf("ParseCmdLine() returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"X=\"1 2\""}, record.Defines); diff != "" {
		t.Errorf("ParseCmdLine() defines mismatch (-want +got):\n%s", diff)
	}

	record, err = grpcClient.RestrictToOneSource(context.Background(), argv, "b.cpp")
	if err != nil {
		t.Fatalf("RestrictToOneSource() returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"b.cpp"}, record.Sources); diff != "" {
		t.Errorf("RestrictToOneSource() sources mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"-O2", "-c"}, record.OtherFlags); diff != "" {
		t.Errorf("RestrictToOneSource() other flags mismatch (-want +got):\n%s", diff)
	}

	_, err = grpcClient.Parse(context.Background(), []string{"gcc", "-o"})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("Parse() of a dangling flag: error %v, want InvalidArgument", err)
	}
}

func TestGRPCClientUnavailable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	grpcClient, err := MakeGRPCClient(addr, "", 2*time.Second)
	if err != nil {
		t.Fatalf("MakeGRPCClient() must not dial eagerly: %v", err)
	}
	defer grpcClient.Clear()

	if _, err := grpcClient.Parse(context.Background(), []string{"gcc", "a.c"}); err == nil {
		t.Errorf("Parse() with nobody listening must fail")
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gccinv/internal/buildlog"
	"gccinv/internal/client"
	"gccinv/internal/common"
	"gccinv/internal/compdb"
	"gccinv/internal/invocation"

	"github.com/dustin/go-humanize"
)

func failedStart(err any) {
	_, _ = fmt.Fprintln(os.Stderr, "gccinv:", err)
	os.Exit(1)
}

// reportError writes a failed classification to w and returns the exit code;
// a malformed invocation shows its offending token
func reportError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var malformed *invocation.MalformedInvocationError
	if errors.As(err, &malformed) && malformed.Token != "" {
		_, _ = fmt.Fprintf(w, "gccinv: %s\n  offending token: %q\n", malformed.Error(), malformed.Token)
	} else {
		_, _ = fmt.Fprintln(w, "gccinv:", err)
	}
	return 1
}

func exitOnError(err error) {
	if exitCode := reportError(os.Stderr, err); exitCode != 0 {
		os.Exit(exitCode)
	}
}

// classifier is either in-process or a remote gccinv-server
type classifier interface {
	Parse(ctx context.Context, argv []string) (invocation.Record, error)
	ParseCmdLine(ctx context.Context, cmdLine string) (invocation.Record, error)
	RestrictToOneSource(ctx context.Context, argv []string, source string) (invocation.Record, error)
}

type localClassifier struct{}

func (localClassifier) Parse(_ context.Context, argv []string) (invocation.Record, error) {
	inv, err := invocation.Parse(argv)
	if err != nil {
		return invocation.Record{}, err
	}
	return inv.Record(), nil
}

func (localClassifier) ParseCmdLine(_ context.Context, cmdLine string) (invocation.Record, error) {
	inv, err := invocation.ParseCmdLine(cmdLine)
	if err != nil {
		return invocation.Record{}, err
	}
	return inv.Record(), nil
}

func (localClassifier) RestrictToOneSource(_ context.Context, argv []string, source string) (invocation.Record, error) {
	inv, err := invocation.Parse(argv)
	if err != nil {
		return invocation.Record{}, err
	}
	if inv, err = inv.RestrictToOneSource(source); err != nil {
		return invocation.Record{}, err
	}
	return inv.Record(), nil
}

type printer struct {
	w      io.Writer
	asJSON bool
	enc    *json.Encoder
}

func makePrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, asJSON: asJSON, enc: json.NewEncoder(w)}
}

func (p *printer) print(record invocation.Record, withCommandLine bool) {
	if p.asJSON {
		_ = p.enc.Encode(record)
		return
	}
	_, _ = fmt.Fprintln(p.w, record.String())
	if withCommandLine {
		_, _ = fmt.Fprintln(p.w, record.CommandLine())
	}
}

func main() {
	showVersionAndExit := common.CmdEnvBool("Show version and exit.", false,
		"version")
	showVersionAndExitShort := common.CmdEnvBool("Show version and exit.", false,
		"v")
	configFile := common.CmdEnvString("Configuration file, missing is ok.", "/etc/gccinv/client.toml",
		"config")
	cmdLine := common.CmdEnvString("Classify a command line as printed in build logs instead of argv after --.", "",
		"cmdline")
	restrictTo := common.CmdEnvString("Also print the invocation restricted to this source, with its shell command.", "",
		"restrict")
	scanLogs := common.CmdEnvBool("Treat positional arguments as build logs and classify every compiler command in them.", false,
		"scan-logs")
	compdbFile := common.CmdEnvString("Classify every entry of a compile_commands.json, restricted to its file.", "",
		"compdb")
	asJSON := common.CmdEnvBool("Print invocations as json lines.", false,
		"json")
	serverAddr := common.CmdEnvString("host:port of gccinv-server to classify remotely.", "",
		"server")
	socksProxyAddr := common.CmdEnvString("SOCKS5 proxy to reach -server through.", "",
		"socks-proxy")
	jobs := common.CmdEnvInt("Build logs scanned in parallel.", 0,
		"jobs")
	logFileName := common.CmdEnvString("Log file, stderr by default.", "",
		"log-filename")
	logLevel := common.CmdEnvInt("Log verbosity: 0 is errors and warnings only, 1 is per-file progress, 2 is every command.", 0,
		"log-level")

	if err := common.ParseCmdFlagsCombiningWithEnv(); err != nil {
		failedStart(err)
	}

	if *showVersionAndExit || *showVersionAndExitShort {
		fmt.Println(common.GetVersion())
		os.Exit(0)
	}

	configuration, err := client.ParseConfiguration(*configFile)
	if err != nil {
		failedStart("failed to parse configuration: " + err.Error())
	}
	if common.IsCmdEnvSet(serverAddr) {
		configuration.Server = *serverAddr
	}
	if common.IsCmdEnvSet(socksProxyAddr) {
		configuration.SocksProxyAddr = *socksProxyAddr
	}
	if common.IsCmdEnvSet(jobs) {
		configuration.Jobs = *jobs
	}
	if common.IsCmdEnvSet(logFileName) {
		configuration.LogFileName = *logFileName
	}
	if common.IsCmdEnvSet(logLevel) {
		configuration.LogLevel = *logLevel
	}

	if err := client.MakeLoggerClient(configuration); err != nil {
		failedStart(err)
	}

	ctx := context.Background()
	out := makePrinter(os.Stdout, *asJSON)

	switch {
	case *scanLogs:
		exitOnError(runScanLogs(ctx, configuration, flag.Args(), out))
	case *compdbFile != "":
		exitOnError(runCompdb(*compdbFile, out))
	default:
		var c classifier = localClassifier{}
		var grpcClient *client.GRPCClient
		if configuration.Server != "" {
			grpcClient, err = client.MakeGRPCClient(configuration.Server, configuration.SocksProxyAddr, time.Duration(configuration.RequestTimeout)*time.Second)
			if err != nil {
				failedStart(err)
			}
			c = grpcClient
		}
		err = runOne(ctx, c, *cmdLine, flag.Args(), *restrictTo, out)
		if grpcClient != nil {
			grpcClient.Clear()
		}
		exitOnError(err)
	}
}

func runOne(ctx context.Context, c classifier, cmdLine string, argv []string, restrictTo string, out *printer) error {
	var record invocation.Record
	var err error
	if cmdLine != "" {
		record, err = c.ParseCmdLine(ctx, cmdLine)
	} else {
		record, err = c.Parse(ctx, argv)
	}
	if err != nil {
		return err
	}
	out.print(record, false)

	if restrictTo == "" {
		return nil
	}
	if cmdLine != "" {
		argv = nonEmpty(invocation.SplitCmdLine(cmdLine))
	}
	restricted, err := c.RestrictToOneSource(ctx, argv, restrictTo)
	if err != nil {
		return err
	}
	out.print(restricted, true)
	return nil
}

func runScanLogs(ctx context.Context, configuration *client.Configuration, fileNames []string, out *printer) error {
	if len(fileNames) == 0 {
		return errors.New("no build logs given")
	}
	compilerNames := configuration.CompilerNames
	if len(compilerNames) == 0 {
		compilerNames = buildlog.DefaultCompilerNames
	}
	scanner, err := buildlog.MakeScanner(compilerNames, client.Logger())
	if err != nil {
		return err
	}

	start := time.Now()
	entries, summary, err := scanner.ScanFiles(ctx, fileNames, configuration.Jobs)
	for _, entry := range entries {
		if !out.asJSON {
			_, _ = fmt.Fprintf(out.w, "%s:%d: ", entry.File, entry.Line)
		}
		out.print(entry.Invocation.Record(), false)
	}
	client.Logger().Info(0, summary.String(), "in", time.Since(start).Round(time.Millisecond))
	return err
}

func runCompdb(fileName string, out *printer) error {
	entries, err := compdb.ReadFile(fileName)
	if err != nil {
		return err
	}

	nMalformed := 0
	for _, entry := range entries {
		restricted, err := entry.Restricted()
		if err != nil {
			nMalformed++
			client.Logger().Error(entry.File, err)
			continue
		}
		out.print(restricted.Record(), false)
	}
	client.Logger().Info(0, "compdb", fileName, ":", humanize.Comma(int64(len(entries))), "entries,", nMalformed, "malformed")
	if nMalformed > 0 {
		return fmt.Errorf("%d of %d entries are malformed", nMalformed, len(entries))
	}
	return nil
}

func nonEmpty(argv []string) []string {
	result := make([]string, 0, len(argv))
	for _, arg := range argv {
		if arg != "" {
			result = append(result, arg)
		}
	}
	return result
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gccinv/internal/common"
	"gccinv/internal/server"

	sdaemon "github.com/coreos/go-systemd/v22/daemon"
)

func failedStart(message string, err error) {
	_, _ = fmt.Fprintln(os.Stderr, fmt.Sprint("failed to start gccinv-server: ", message, ": ", err))
	os.Exit(1)
}

func main() {
	showVersionAndExit := common.CmdEnvBool("Show version and exit", false,
		"version")
	showVersionAndExitShort := common.CmdEnvBool("Show version and exit", false,
		"v")
	configFile := common.CmdEnvString("Configuration file", "/etc/gccinv/server.toml",
		"config")

	if err := common.ParseCmdFlagsCombiningWithEnv(); err != nil {
		failedStart("Invalid arguments", err)
	}

	if *showVersionAndExit || *showVersionAndExitShort {
		fmt.Println(common.GetVersion())
		os.Exit(0)
	}

	configuration, err := ParseConfiguration(*configFile)
	if err != nil {
		failedStart("Failed to parse configuration", err)
	}

	if err = server.MakeLoggerServer(configuration.LogFileName, configuration.LogLevel); err != nil {
		failedStart("Can't init logger", err)
	}

	listeners, err := server.MakeListeners(configuration.ListenAddr, configuration.UnixSocket, configuration.UnixSocketMode)
	if err != nil {
		failedStart("Failed to listen", err)
	}

	s := server.MakeClassifierServer(configuration.MaxArgs)

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
		<-signals
		_, _ = sdaemon.SdNotify(false, sdaemon.SdNotifyStopping)
		s.QuitServerGracefully()
	}()

	_, _ = sdaemon.SdNotify(false, sdaemon.SdNotifyReady)
	if err = s.StartGRPCListening(listeners); err != nil {
		failedStart("Failed to serve", err)
	}
}

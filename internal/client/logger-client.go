package client

import "gccinv/internal/common"

// anywhere in the client code, use logClient.Info() and other methods for logging
var logClient *common.LoggerWrapper

func MakeLoggerClient(configuration *Configuration) error {
	var err error
	logClient, err = common.MakeLogger("gccinv", configuration.LogFileName, configuration.LogLevel, true)
	return err
}

func Logger() *common.LoggerWrapper {
	return logClient
}

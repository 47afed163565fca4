package client

import (
	"errors"
	"io/fs"
	"runtime"

	"github.com/BurntSushi/toml"
)

type Configuration struct {
	Server         string   // host:port of gccinv-server; empty means classify in-process
	SocksProxyAddr string   // unix socket of a SOCKS5 proxy to reach Server through
	RequestTimeout int      // seconds
	Jobs           int      // build logs scanned in parallel
	CompilerNames  []string // globs matched against program names in build logs
	LogFileName    string
	LogLevel       int
}

func DefaultConfiguration() *Configuration {
	return &Configuration{
		RequestTimeout: 15,
		Jobs:           runtime.NumCPU(),
		LogFileName:    "stderr",
		LogLevel:       0,
	}
}

// ParseConfiguration reads filePath over defaults.
// A missing file is fine: gccinv works without any configuration.
func ParseConfiguration(filePath string) (*Configuration, error) {
	config := DefaultConfiguration()
	if _, err := toml.DecodeFile(filePath, config); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return nil, err
	}
	return config, nil
}

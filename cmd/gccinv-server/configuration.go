package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

type Configuration struct {
	ListenAddr     []string
	UnixSocket     string
	UnixSocketMode os.FileMode
	MaxArgs        int
	LogFileName    string
	LogLevel       int
}

func ParseConfiguration(filePath string) (*Configuration, error) {
	config := Configuration{
		ListenAddr:     []string{"localhost:43300"},
		UnixSocketMode: 0o660,
		MaxArgs:        64 * 1024,
		LogFileName:    "stderr",
		LogLevel:       0,
	}
	if _, err := toml.DecodeFile(filePath, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

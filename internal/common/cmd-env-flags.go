// This module provides integration of the flag package with environment variables.
// The purpose to launch either `gccinv -log-filename fn.log` or `GCCINV_LOG_FILENAME=fn.log gccinv`.
// A command-line flag always wins over an env var.
// See usages of CmdEnvString and others.

package common

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type cmdLineArg interface {
	flag.Value
	isFlagSet() bool
	getCmdName() string
	getEnvName() string
	getDescription() string
}

var allCmdLineArgs []cmdLineArg

type cmdLineArgString struct {
	cmdName string
	envName string
	usage   string

	isSet bool
	def   string
	value string
}

func (s *cmdLineArgString) String() string {
	return s.value
}

func (s *cmdLineArgString) Set(v string) error {
	s.isSet = true
	s.value = v
	return nil
}

func (s *cmdLineArgString) getDescription() string {
	return s.usage
}

func (s *cmdLineArgString) isFlagSet() bool {
	return s.isSet
}

func (s *cmdLineArgString) getCmdName() string {
	return s.cmdName
}

func (s *cmdLineArgString) getEnvName() string {
	return s.envName
}

type cmdLineArgBool struct {
	cmdName string
	envName string
	usage   string

	isSet bool
	def   bool
	value bool
}

func (s *cmdLineArgBool) String() string {
	return strconv.FormatBool(s.value)
}

func (s *cmdLineArgBool) Set(v string) error {
	s.isSet = true
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	s.value = b
	return nil
}

func (s *cmdLineArgBool) IsBoolFlag() bool {
	return true
}

func (s *cmdLineArgBool) getDescription() string {
	return s.usage
}

func (s *cmdLineArgBool) isFlagSet() bool {
	return s.isSet
}

func (s *cmdLineArgBool) getCmdName() string {
	return s.cmdName
}

func (s *cmdLineArgBool) getEnvName() string {
	return s.envName
}

type cmdLineArgInt struct {
	cmdName string
	envName string
	usage   string

	isSet bool
	def   int
	value int
}

func (s *cmdLineArgInt) String() string {
	return strconv.Itoa(s.value)
}

func (s *cmdLineArgInt) Set(v string) error {
	s.isSet = true
	i, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	s.value = i
	return nil
}

func (s *cmdLineArgInt) getDescription() string {
	return s.usage
}

func (s *cmdLineArgInt) isFlagSet() bool {
	return s.isSet
}

func (s *cmdLineArgInt) getCmdName() string {
	return s.cmdName
}

func (s *cmdLineArgInt) getEnvName() string {
	return s.envName
}

// envNameForCmd converts "log-filename" to "GCCINV_LOG_FILENAME"
func envNameForCmd(cmdName string) string {
	if cmdName == "" || cmdName == "v" {
		return ""
	}
	return "GCCINV_" + strings.ToUpper(strings.ReplaceAll(cmdName, "-", "_"))
}

func initCmdFlag(s cmdLineArg, cmdName string, usage string) {
	if cmdName != "" { // only env var makes sense
		flag.Var(s, cmdName, usage)
	}
}

func customPrintUsage() {
	fmt.Printf("Usage of %s:\n\n", os.Args[0])
	for _, f := range allCmdLineArgs {
		if f.getCmdName() == "v" { // don't print "-v" (shortcut for -version)
			continue
		}

		valueHint := ""
		if f.getCmdName() == "version" {
			valueHint = " / -v"
		}
		if f.getCmdName() != "" {
			fmt.Printf("  -%s%s\n", f.getCmdName(), valueHint)
		}
		if f.getEnvName() != "" {
			fmt.Printf("  %s\n", f.getEnvName())
		}
		fmt.Print("    \t")
		fmt.Print(strings.ReplaceAll(f.getDescription(), "\n", "\n    \t"))
		fmt.Print("\n\n")
	}
}

func CmdEnvString(usage string, def string, cmdFlagName string) *string {
	var sf = &cmdLineArgString{cmdFlagName, envNameForCmd(cmdFlagName), usage, false, def, def}
	allCmdLineArgs = append(allCmdLineArgs, sf)
	initCmdFlag(sf, cmdFlagName, usage)
	return &sf.value
}

func CmdEnvBool(usage string, def bool, cmdFlagName string) *bool {
	var sf = &cmdLineArgBool{cmdFlagName, envNameForCmd(cmdFlagName), usage, false, def, def}
	allCmdLineArgs = append(allCmdLineArgs, sf)
	initCmdFlag(sf, cmdFlagName, usage)
	return &sf.value
}

func CmdEnvInt(usage string, def int, cmdFlagName string) *int {
	var sf = &cmdLineArgInt{cmdFlagName, envNameForCmd(cmdFlagName), usage, false, def, def}
	allCmdLineArgs = append(allCmdLineArgs, sf)
	initCmdFlag(sf, cmdFlagName, usage)
	return &sf.value
}

// IsCmdEnvSet reports whether a value was given explicitly, either on the command line or via env.
// It's used to decide whether a flag overrides a value from a config file.
func IsCmdEnvSet(value any) bool {
	for _, f := range allCmdLineArgs {
		switch s := f.(type) {
		case *cmdLineArgString:
			if &s.value == value {
				return s.isSet
			}
		case *cmdLineArgBool:
			if &s.value == value {
				return s.isSet
			}
		case *cmdLineArgInt:
			if &s.value == value {
				return s.isSet
			}
		}
	}
	return false
}

// ParseCmdFlagsCombiningWithEnv fills values from env vars first, then parses os.Args over them.
func ParseCmdFlagsCombiningWithEnv() error {
	for _, f := range allCmdLineArgs {
		if envName := f.getEnvName(); envName != "" {
			if v, ok := os.LookupEnv(envName); ok {
				if err := f.Set(v); err != nil {
					return fmt.Errorf("invalid %s=%q: %w", envName, v, err)
				}
			}
		}
	}

	flag.Usage = customPrintUsage
	flag.Parse()
	return nil
}

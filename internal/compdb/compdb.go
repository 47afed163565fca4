// Package compdb reads compilation databases (compile_commands.json) as written by cmake, bear or ninja.
package compdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gccinv/internal/invocation"

	"github.com/kballard/go-shellquote"
)

// Entry is one element of compile_commands.json.
// Either Arguments or Command is set; Command is a shell-escaped string.
type Entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments,omitempty"`
	Command   string   `json:"command,omitempty"`
	Output    string   `json:"output,omitempty"`
}

func Read(r io.Reader) ([]Entry, error) {
	entries := make([]Entry, 0, 64)
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("can't decode compilation database: %w", err)
	}
	return entries, nil
}

func ReadFile(fileName string) ([]Entry, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return entries, nil
}

// Argv returns Arguments as is, or Command split by shell rules.
func (entry *Entry) Argv() ([]string, error) {
	if len(entry.Arguments) > 0 {
		return entry.Arguments, nil
	}
	if entry.Command == "" {
		return nil, errors.New("entry has neither arguments nor command")
	}
	argv, err := shellquote.Split(entry.Command)
	if err != nil {
		return nil, fmt.Errorf("can't split command of %s: %w", entry.File, err)
	}
	return argv, nil
}

func (entry *Entry) Invocation() (*invocation.Invocation, error) {
	argv, err := entry.Argv()
	if err != nil {
		return nil, err
	}
	return invocation.Parse(argv)
}

// Restricted is the entry's invocation narrowed to File.
// Entries generated for multi-source command lines have one entry per source, all with the same command.
func (entry *Entry) Restricted() (*invocation.Invocation, error) {
	inv, err := entry.Invocation()
	if err != nil {
		return nil, err
	}
	return inv.RestrictToOneSource(entry.File)
}

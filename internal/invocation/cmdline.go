package invocation

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// SplitCmdLine reconstructs argv from a command line as it's printed in build logs.
// Tokens are separated by spaces and tabs outside of double quotes.
// Unlike shell splitting, quotes stay in the token:
// > -DIPATH_IDSTR="QLogic kernel.org driver"
// is one token, quotes included, because that's exactly what make passed to the compiler after its own unquoting.
// Every blank ends a token, so runs of blanks produce empty tokens; a trailing empty token is not emitted.
func SplitCmdLine(cmdLine string) []string {
	result := make([]string, 0, 16)
	pending := strings.Builder{}

	for i, fragment := range strings.Split(cmdLine, "\"") {
		if i%2 == 1 { // inside quotes
			pending.WriteByte('"')
			pending.WriteString(fragment)
			pending.WriteByte('"')
			continue
		}
		for j := 0; j < len(fragment); j++ {
			if c := fragment[j]; c == ' ' || c == '\t' {
				result = append(result, pending.String())
				pending.Reset()
			} else {
				pending.WriteByte(c)
			}
		}
	}

	if pending.Len() > 0 {
		result = append(result, pending.String())
	}
	return result
}

// ParseCmdLine splits a build log command line and classifies it; empty tokens are skipped.
func ParseCmdLine(cmdLine string) (*Invocation, error) {
	argv := SplitCmdLine(cmdLine)
	nonEmpty := argv[:0]
	for _, arg := range argv {
		if arg != "" {
			nonEmpty = append(nonEmpty, arg)
		}
	}
	return Parse(nonEmpty)
}

// CommandLine renders Argv as a shell command, ready to be launched again.
func (invocation *Invocation) CommandLine() string {
	return shellquote.Join(invocation.argv...)
}

// CommandLine renders Record.Argv as a shell command.
func (record Record) CommandLine() string {
	return shellquote.Join(record.Argv()...)
}

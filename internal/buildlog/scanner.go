package buildlog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"gccinv/internal/common"
	"gccinv/internal/invocation"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// DefaultCompilerNames are matched against program names when no names are configured.
var DefaultCompilerNames = []string{
	"gcc", "g++", "cc", "c++",
	"clang", "clang++",
	"cc1", "cc1plus",
	"*-gcc", "*-g++", // cross compilers: x86_64-linux-gnu-gcc
}

const maxLogLineSize = 16 * 1024 * 1024

// Entry is one compiler invocation found in a build log.
type Entry struct {
	File       string
	Line       int // 1-based; for a command continued with '\', the line it starts on
	Invocation *invocation.Invocation
}

type Summary struct {
	Files       int
	Bytes       int64
	Commands    int // commands run by a compiler
	Invocations int // commands parsed successfully
	Malformed   int
}

func (summary *Summary) Add(other Summary) {
	summary.Files += other.Files
	summary.Bytes += other.Bytes
	summary.Commands += other.Commands
	summary.Invocations += other.Invocations
	summary.Malformed += other.Malformed
}

func (summary Summary) String() string {
	return fmt.Sprintf("scanned %s in %d file(s): %s compiler commands, %s invocations, %d malformed",
		humanize.Bytes(uint64(summary.Bytes)), summary.Files,
		humanize.Comma(int64(summary.Commands)), humanize.Comma(int64(summary.Invocations)), summary.Malformed)
}

// Scanner finds compiler command lines in build logs (make V=1, ninja -v, rpmbuild output and so on).
// Each log line is split with invocation.SplitCmdLine and cut at "&&", "||", ";", "|" and "&" (redirections are dropped),
// then every command whose program name matches compilerNames is classified.
// A malformed command is counted and logged, it never stops scanning.
type Scanner struct {
	compilerNames []string
	logger        *common.LoggerWrapper // may be nil
}

func MakeScanner(compilerNames []string, logger *common.LoggerWrapper) (*Scanner, error) {
	if len(compilerNames) == 0 {
		compilerNames = DefaultCompilerNames
	}
	for _, pattern := range compilerNames {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid compiler name pattern %q: %w", pattern, err)
		}
	}
	return &Scanner{
		compilerNames: compilerNames,
		logger:        logger,
	}, nil
}

func (scanner *Scanner) IsCompiler(executable string) bool {
	programName := path.Base(executable)
	for _, pattern := range scanner.compilerNames {
		if matched, _ := path.Match(pattern, programName); matched {
			return true
		}
	}
	return false
}

// Scan reads r to the end and calls onEntry for every invocation found, in log order.
func (scanner *Scanner) Scan(ctx context.Context, r io.Reader, fileName string, onEntry func(Entry)) (Summary, error) {
	summary := Summary{Files: 1}

	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), maxLogLineSize)

	lineNo := 0
	startLineNo := 0
	pending := strings.Builder{}

	for lines.Scan() {
		lineNo++
		if lineNo%1024 == 0 && ctx.Err() != nil {
			return summary, ctx.Err()
		}

		line := lines.Text()
		summary.Bytes += int64(len(line)) + 1
		if pending.Len() == 0 {
			startLineNo = lineNo
		}

		if continued, ok := strings.CutSuffix(line, "\\"); ok {
			pending.WriteString(continued)
			pending.WriteByte(' ')
			continue
		}
		pending.WriteString(line)

		scanner.scanCmdLine(pending.String(), fileName, startLineNo, &summary, onEntry)
		pending.Reset()
	}
	if pending.Len() > 0 {
		scanner.scanCmdLine(pending.String(), fileName, startLineNo, &summary, onEntry)
	}

	if err := lines.Err(); err != nil {
		return summary, fmt.Errorf("%s:%d: %w", fileName, lineNo, err)
	}
	return summary, nil
}

func (scanner *Scanner) scanCmdLine(cmdLine string, fileName string, lineNo int, summary *Summary, onEntry func(Entry)) {
	for _, argv := range splitCommands(invocation.SplitCmdLine(cmdLine)) {
		if !scanner.IsCompiler(argv[0]) {
			continue
		}
		summary.Commands++

		inv, err := invocation.Parse(argv)
		if err != nil {
			summary.Malformed++
			if scanner.logger != nil {
				scanner.logger.Warning(fmt.Sprintf("%s:%d:", fileName, lineNo), err)
			}
			continue
		}
		summary.Invocations++
		if scanner.logger != nil {
			scanner.logger.Info(2, fmt.Sprintf("%s:%d:", fileName, lineNo), inv)
		}
		onEntry(Entry{File: fileName, Line: lineNo, Invocation: inv})
	}
}

// splitCommands cuts argv at shell separators and pipes, dropping empty tokens and empty commands.
// Redirections are dropped along with their target: `2>/dev/null`, `> out.i`, `2>&1`.
func splitCommands(tokens []string) [][]string {
	commands := make([][]string, 0, 1)
	current := make([]string, 0, len(tokens))

	flush := func() {
		if len(current) > 0 {
			commands = append(commands, current)
			current = make([]string, 0, len(tokens))
		}
	}

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		switch token {
		case "":
			continue
		case "&&", "||", ";", "|", "&":
			flush()
			continue
		}

		if isRedirect, hasTarget := redirection(token); isRedirect {
			if !hasTarget {
				// target is the next non-empty token
				for i+1 < len(tokens) && tokens[i+1] == "" {
					i++
				}
				i++
			}
			continue
		}
		current = append(current, token)
	}
	flush()
	return commands
}

// redirection detects `[n]>`, `[n]>>`, `[n]<`, `&>` and `>&` forms, with or without an attached target.
func redirection(token string) (isRedirect bool, hasTarget bool) {
	rest := strings.TrimLeft(token, "0123456789")
	if rest == token {
		rest = strings.TrimPrefix(token, "&")
	}

	var op string
	switch {
	case strings.HasPrefix(rest, ">>"):
		op = ">>"
	case strings.HasPrefix(rest, ">"):
		op = ">"
	case strings.HasPrefix(rest, "<"):
		op = "<"
	default:
		return false, false
	}
	target := strings.TrimPrefix(rest[len(op):], "&")
	return true, target != ""
}

// ScanFiles scans several logs concurrently, at most jobs at a time.
// Entries are returned grouped by file in the order of fileNames.
func (scanner *Scanner) ScanFiles(ctx context.Context, fileNames []string, jobs int) ([]Entry, Summary, error) {
	perFile := make([][]Entry, len(fileNames))
	summaries := make([]Summary, len(fileNames))

	group, groupCtx := errgroup.WithContext(ctx)
	if jobs > 0 {
		group.SetLimit(jobs)
	}

	for i, fileName := range fileNames {
		group.Go(func() error {
			f, err := os.Open(fileName)
			if err != nil {
				return err
			}
			defer f.Close()

			summaries[i], err = scanner.Scan(groupCtx, f, fileName, func(entry Entry) {
				perFile[i] = append(perFile[i], entry)
			})
			return err
		})
	}

	err := group.Wait()

	var summary Summary
	entries := make([]Entry, 0)
	for i := range fileNames {
		summary.Add(summaries[i])
		entries = append(entries, perFile[i]...)
	}
	return entries, summary, err
}

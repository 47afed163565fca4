package invocation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedInvocation is matched (via errors.Is) by every *MalformedInvocationError.
var ErrMalformedInvocation = errors.New("malformed invocation")

// MalformedInvocationError is returned when a command line can't be classified at all:
// either it's empty, or it ends with a flag from the OptionTable that has nothing to consume.
// Unknown flags are never an error, they just go to OtherFlags.
type MalformedInvocationError struct {
	Reason string
	Token  string // offending token, empty for an empty command line
	Index  int    // position of Token in argv
}

func (err *MalformedInvocationError) Error() string {
	if err.Token == "" {
		return "malformed invocation: " + err.Reason
	}
	return fmt.Sprintf("malformed invocation: %s: %s (argv[%d])", err.Reason, err.Token, err.Index)
}

func (err *MalformedInvocationError) Is(target error) bool {
	return target == ErrMalformedInvocation
}

// Invocation is one compiler command line split into semantic categories.
// It's created by Classifier.Parse and never modified afterward;
// RestrictToOneSource makes a new one.
type Invocation struct {
	classifier *Classifier

	argv         []string
	executable   string   // argv[0] as is: /usr/bin/c++, gcc, cc1
	sources      []string // plain tokens, in cmd line order (order of .o files matters for linking)
	defines      []string // -D{define} without -D, duplicates kept
	includePaths []string // -I{dir} without -I, duplicates kept
	otherFlags   []string // everything else starting with '-', except those consumed by OptionTable
}

// Record is an exported snapshot of an Invocation, for json output and rpc.
type Record struct {
	Executable   string   `json:"executable"`
	ProgramName  string   `json:"program_name"`
	Sources      []string `json:"sources"`
	Defines      []string `json:"defines"`
	IncludePaths []string `json:"include_paths"`
	OtherFlags   []string `json:"other_flags"`
}

// Classifier turns argv into an Invocation using its OptionTable.
// It has no state except the table, so it's safe to share between goroutines.
type Classifier struct {
	options *OptionTable
}

var defaultClassifier = MakeClassifier(defaultOptionTable)

func MakeClassifier(options *OptionTable) *Classifier {
	return &Classifier{options: options}
}

// Parse classifies argv with the default OptionTable.
func Parse(argv []string) (*Invocation, error) {
	return defaultClassifier.Parse(argv)
}

// Parse scans argv[1:] once, left to right.
// A flag from the OptionTable is skipped along with its argument before any prefix is checked,
// then -D and -I are stripped into defines and include paths,
// other '-' tokens are kept as opaque flags, and the rest are sources.
// On error, no Invocation is returned at all.
func (classifier *Classifier) Parse(argv []string) (*Invocation, error) {
	if len(argv) == 0 {
		return nil, &MalformedInvocationError{Reason: "empty command line"}
	}

	invocation := &Invocation{
		classifier:   classifier,
		argv:         append([]string(nil), argv...),
		executable:   argv[0],
		sources:      make([]string, 0, 1),
		defines:      make([]string, 0),
		includePaths: make([]string, 0),
		otherFlags:   make([]string, 0, len(argv)),
	}

	for i := 1; i < len(argv); i++ {
		arg := argv[i]

		if classifier.options.Consumes(arg) {
			if i+1 >= len(argv) {
				return nil, &MalformedInvocationError{Reason: "no argument after flag", Token: arg, Index: i}
			}
			i++
			continue
		}

		if define, ok := strings.CutPrefix(arg, "-D"); ok {
			invocation.defines = append(invocation.defines, define)
		} else if dir, ok := strings.CutPrefix(arg, "-I"); ok {
			invocation.includePaths = append(invocation.includePaths, dir)
		} else if len(arg) > 1 && arg[0] == '-' {
			invocation.otherFlags = append(invocation.otherFlags, arg)
		} else {
			// a lone "-" is stdin, an input like any other file
			invocation.sources = append(invocation.sources, arg)
		}
	}

	return invocation, nil
}

// RestrictToOneSource makes a new Invocation that keeps defines, include paths and other flags,
// but compiles only the given source.
// Flags consumed by the OptionTable (-o, -MF, -x and so on) are lost: they were never stored.
func (invocation *Invocation) RestrictToOneSource(source string) (*Invocation, error) {
	argv := rebuildArgv(invocation.executable, invocation.defines, invocation.includePaths, invocation.otherFlags, []string{source})
	return invocation.classifier.Parse(argv)
}

// rebuildArgv lays out classified categories as executable, -D..., -I..., other flags, sources.
func rebuildArgv(executable string, defines []string, includePaths []string, otherFlags []string, sources []string) []string {
	argv := make([]string, 0, 1+len(defines)+len(includePaths)+len(otherFlags)+len(sources))
	argv = append(argv, executable)
	for _, define := range defines {
		argv = append(argv, "-D"+define)
	}
	for _, dir := range includePaths {
		argv = append(argv, "-I"+dir)
	}
	argv = append(argv, otherFlags...)
	argv = append(argv, sources...)
	return argv
}

func (invocation *Invocation) Executable() string {
	return invocation.executable
}

// ProgramName is the last non-empty '/'-separated segment of Executable, independent of the host OS.
func (invocation *Invocation) ProgramName() string {
	return programName(invocation.executable)
}

func programName(executable string) string {
	segments := strings.Split(executable, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return executable
}

func (invocation *Invocation) Argv() []string {
	return copyStrings(invocation.argv)
}

func (invocation *Invocation) Sources() []string {
	return copyStrings(invocation.sources)
}

func (invocation *Invocation) Defines() []string {
	return copyStrings(invocation.defines)
}

func (invocation *Invocation) IncludePaths() []string {
	return copyStrings(invocation.includePaths)
}

func (invocation *Invocation) OtherFlags() []string {
	return copyStrings(invocation.otherFlags)
}

// copyStrings never returns nil, so that an empty category is [] in json
func copyStrings(items []string) []string {
	return append(make([]string, 0, len(items)), items...)
}

func (invocation *Invocation) Record() Record {
	return Record{
		Executable:   invocation.executable,
		ProgramName:  invocation.ProgramName(),
		Sources:      copyStrings(invocation.sources),
		Defines:      copyStrings(invocation.defines),
		IncludePaths: copyStrings(invocation.includePaths),
		OtherFlags:   copyStrings(invocation.otherFlags),
	}
}

// String renders all classified fields in a fixed order, see Record.String.
func (invocation *Invocation) String() string {
	return invocation.Record().String()
}

// String renders a record as
// > Invocation(executable="gcc", sources=["a.c"], defines=[], include_paths=[], other_flags=["-c"])
// Strings are Go-quoted, so each of them can be recovered with strconv.Unquote.
// Golden tests compare this output literally: don't change the format.
func (record Record) String() string {
	b := strings.Builder{}
	b.WriteString("Invocation(executable=")
	b.WriteString(strconv.Quote(record.Executable))
	writeQuotedList(&b, "sources", record.Sources)
	writeQuotedList(&b, "defines", record.Defines)
	writeQuotedList(&b, "include_paths", record.IncludePaths)
	writeQuotedList(&b, "other_flags", record.OtherFlags)
	b.WriteRune(')')
	return b.String()
}

// Argv lays the record out as a command line again: executable, -D..., -I..., other flags, sources.
// Flags consumed by the OptionTable are not in a record, so for a restricted invocation
// this is exactly its argv, and for others it's argv without them.
func (record Record) Argv() []string {
	return rebuildArgv(record.Executable, record.Defines, record.IncludePaths, record.OtherFlags, record.Sources)
}

func writeQuotedList(b *strings.Builder, name string, items []string) {
	fmt.Fprintf(b, ", %s=[", name)
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(item))
	}
	b.WriteRune(']')
}

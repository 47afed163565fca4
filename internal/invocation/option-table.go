package invocation

// OptionTable is a read-only set of flags that take the next token as their argument,
// like `-o file` or `-isystem dir`.
// The argument is dropped together with the flag: it's never a source, a define or an include path.
type OptionTable struct {
	consumes map[string]struct{}
}

// flags passed to gcc/clang drivers, to cc1/cc1plus and to kernel-build compilers,
// all matched against one table
var argumentTakingFlags = []string{
	// output
	"-o",
	// language selection
	"-x",
	// dependency generation naming a file or a target
	"-MF",
	"-MT",
	"-MQ",
	"-MD", // cc1 form: -MD {file}
	// include and macro injection
	"-include",
	"-imacros",
	"-idirafter",
	"-iprefix",
	"-iwithprefix",
	"-iwithprefixbefore",
	"-isysroot",
	"-imultilib",
	"-isystem",
	"-iquote",
	// cc1 internals
	"-dumpbase",
	"-auxbase-strip",
}

var defaultOptionTable = MakeOptionTable(argumentTakingFlags...)

func MakeOptionTable(flags ...string) *OptionTable {
	table := &OptionTable{
		consumes: make(map[string]struct{}, len(flags)),
	}
	for _, flag := range flags {
		table.consumes[flag] = struct{}{}
	}
	return table
}

// DefaultOptionTable returns the table used by Parse.
func DefaultOptionTable() *OptionTable {
	return defaultOptionTable
}

// Consumes reports whether flag takes the following token as its argument.
// Only exact matches count: `-ofile` or `-isystem/usr/include` are not in the table.
func (table *OptionTable) Consumes(flag string) bool {
	_, ok := table.consumes[flag]
	return ok
}

func (table *OptionTable) Len() int {
	return len(table.consumes)
}

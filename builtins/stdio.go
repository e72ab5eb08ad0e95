// Package builtins implements the built-in library modules this
// subset's `#include` directive can name. It is a leaf package: it
// depends on nothing from the root cinterp package, trading in plain
// uint32s, strings, and a small local Binder interface instead of
// cinterp's Number/Memory types, so cinterp can import builtins
// without an import cycle.
//
// Grounded on interpreter/__builtins__/stdio.py from the original
// implementation.
package builtins

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Binder lets a builtin write a value back into the caller's memory
// by name, the way `scanf`'s pseudo-address arguments work.
type Binder interface {
	Bind(name string, value uint32)
}

// Builtin describes one registrable function: its declared return and
// argument types (ArgTypes nil means the analyzer should not
// arity-check it, the way `printf`/`scanf` accept a variable tail),
// and the function itself. Invoke's args holds every Number-valued
// argument in call order; strs holds every String-literal argument in
// call order; names holds the pseudo-address (the pre-&-stripped
// identifier) for any argument that was `&var`, aligned by position
// with args, empty string where an argument was not an address-of.
type Builtin struct {
	ReturnType string
	ArgTypes   []string
	Invoke     func(args []uint32, strs []string, names []string, bind Binder) (uint32, error)
}

var scanfFlag = regexp.MustCompile(`%[^%]*[dfi]`)

// Register builds the stdio.h builtin table. Output is written to out
// and scanf reads whitespace-separated fields from in, rather than
// hardcoding os.Stdout/os.Stdin, so callers (and tests) can redirect
// both.
func Register(in io.Reader, out io.Writer) map[string]Builtin {
	reader := bufio.NewReader(in)
	return map[string]Builtin{
		"printf": {
			ReturnType: "int",
			ArgTypes:   nil,
			Invoke: func(args []uint32, strs []string, _ []string, _ Binder) (uint32, error) {
				if len(strs) == 0 {
					return 0, fmt.Errorf("printf: missing format string")
				}
				message, err := formatPrintf(strs[0], args)
				if err != nil {
					return 0, err
				}
				n, _ := io.WriteString(out, message)
				return uint32(n), nil
			},
		},
		"scanf": {
			ReturnType: "int",
			ArgTypes:   nil,
			Invoke: func(_ []uint32, strs []string, names []string, bind Binder) (uint32, error) {
				if len(strs) == 0 {
					return 0, fmt.Errorf("scanf: missing format string")
				}
				fields := scanfFlag.FindAllString(strings.Join(strings.Fields(strs[0]), ""), -1)
				targets := nonEmpty(names)
				if len(fields) != len(targets) {
					return 0, fmt.Errorf("scanf: format takes %d arguments but %d were given", len(fields), len(targets))
				}
				var values []string
				for len(values) < len(fields) {
					line, err := reader.ReadString('\n')
					if err != nil && line == "" {
						return 0, fmt.Errorf("scanf: unexpected end of input")
					}
					values = append(values, strings.Fields(line)...)
				}
				for i, flag := range fields {
					if flag[len(flag)-1] != 'd' {
						return 0, fmt.Errorf("scanf: only %%d fields are supported, got %q", flag)
					}
					v, err := strconv.ParseUint(values[i], 10, 32)
					if err != nil {
						return 0, fmt.Errorf("scanf: %q is not an integer", values[i])
					}
					bind.Bind(targets[i], uint32(v))
				}
				return uint32(len(values)), nil
			},
		},
		"getchar": {
			ReturnType: "char",
			ArgTypes:   []string{},
			Invoke: func(_ []uint32, _ []string, _ []string, _ Binder) (uint32, error) {
				b, err := reader.ReadByte()
				if err != nil {
					return 0, fmt.Errorf("getchar: %w", err)
				}
				return uint32(b), nil
			},
		},
	}
}

func nonEmpty(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// formatPrintf renders a C `printf`-style format string against args,
// supporting the conversions this subset's Number values can carry:
// %d and %i (signed decimal), %c (character), %x (hex); anything else is copied
// through literally save for %% (a literal percent).
func formatPrintf(format string, args []uint32) (string, error) {
	var sb strings.Builder
	ai := 0
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '%' || i == len(runes)-1 {
			sb.WriteRune(c)
			continue
		}
		i++
		switch runes[i] {
		case '%':
			sb.WriteRune('%')
		case 'd', 'i':
			if ai >= len(args) {
				return "", fmt.Errorf("printf: not enough arguments for format %q", format)
			}
			fmt.Fprintf(&sb, "%d", int32(args[ai]))
			ai++
		case 'x':
			if ai >= len(args) {
				return "", fmt.Errorf("printf: not enough arguments for format %q", format)
			}
			fmt.Fprintf(&sb, "%x", args[ai])
			ai++
		case 'c':
			if ai >= len(args) {
				return "", fmt.Errorf("printf: not enough arguments for format %q", format)
			}
			sb.WriteRune(rune(args[ai]))
			ai++
		default:
			sb.WriteRune('%')
			sb.WriteRune(runes[i])
		}
	}
	return sb.String(), nil
}

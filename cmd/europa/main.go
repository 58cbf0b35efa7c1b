// cmd/europa/main.go
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"europa/internal/dbglue"
	"europa/internal/gcheap"
	"europa/internal/port"
	"europa/internal/reader"
	"europa/internal/runtime"
	"europa/internal/stdlib"
)

const version = "0.1.0"

// commandAliases mirrors the teacher's single-letter shorthand for its
// subcommands.
var commandAliases = map[string]string{
	"r": "run",
	"i": "repl",
	"c": "check",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		if len(args) > 1 {
			showCommandHelp(args[1])
		} else {
			showUsage()
		}
	case "--version", "-v", "version":
		showVersion()
	case "run":
		runCommand(args[1:])
	case "repl":
		replCommand()
	case "check":
		checkCommand(args[1:])
	default:
		suggestCommand(cmd)
	}
}

// newGlobal wires the standard library and SQL built-ins into a fresh
// Global, the first two steps of the embedding sequence spec.md §6
// describes: allocate, then register_standard_library. Callers set the
// standard ports themselves.
func newGlobal() *runtime.Global {
	g := runtime.New()
	stdlib.Register(g)
	dbglue.Register(g)
	return g
}

func standardPorts(h *gcheap.Heap) (stdin, stdout, stderr *port.Port) {
	stdin = port.New(h, port.Input|port.Textual, port.WrapFile(os.Stdin, true, false))
	stdout = port.New(h, port.Output|port.Textual, port.WrapFile(os.Stdout, false, true))
	stderr = port.New(h, port.Output|port.Textual, port.WrapFile(os.Stderr, false, true))
	return
}

func runCommand(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: europa run <file.scm>")
		os.Exit(1)
	}
	filename := fs.Arg(0)

	g := newGlobal()
	defer g.Terminate()
	stdin, stdout, stderr := standardPorts(g.Heap)
	s := g.NewState()
	s.SetStandardPorts(stdin, stdout, stderr)

	if _, err := s.DoFile(filename); err != nil {
		reportError(s, err)
		os.Exit(1)
	}
	stdout.Flush()
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: europa check <file.scm>")
		os.Exit(1)
	}
	filename := fs.Arg(0)

	g := runtime.New()
	defer g.Terminate()

	backend, err := port.OpenInputFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
		os.Exit(1)
	}
	p := port.New(g.Heap, port.Input|port.Textual, backend)
	defer p.Close()

	r := reader.New(g.Heap, p, g.Symbols, g.Strings)
	for {
		v, err := r.Read()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
			os.Exit(1)
		}
		if v.IsEOF() {
			break
		}
	}
	fmt.Printf("%s: syntax is valid\n", filename)
}

// replCommand runs an interactive read-compile-execute loop, printing a
// prompt only when stdin is a terminal (spec.md's embedding API has no
// opinion on interactivity; go-isatty is how the teacher's own tools
// decide whether to behave like a pipe or a terminal).
func replCommand() {
	g := newGlobal()
	defer g.Terminate()
	stdin, stdout, stderr := standardPorts(g.Heap)
	s := g.NewState()
	s.SetStandardPorts(stdin, stdout, stderr)

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if interactive {
		fmt.Println("europa", version)
		fmt.Println("enter an expression, or :quit to exit")
	}

	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == ":quit" {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		v, err := s.DoString(line)
		if err != nil {
			reportError(s, err)
			continue
		}
		if !v.IsNull() {
			stdout.Write(v)
			stdout.WriteChar('\n')
			stdout.Flush()
		}
	}
}

func reportError(s *runtime.State, err error) {
	if ev, ok := s.Recover(); ok {
		fmt.Fprintf(os.Stderr, "error: %s\n", ev.Message.Text)
		for nested := ev.Nested; nested != nil; nested = nested.Nested {
			fmt.Fprintf(os.Stderr, "  caused by: %s\n", nested.Message.Text)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func showUsage() {
	fmt.Println("Europa - a register-and-rib Scheme")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  europa run <file.scm>    Run a script                (alias: r)")
	fmt.Println("  europa check <file.scm>  Check syntax without running (alias: c)")
	fmt.Println("  europa repl              Start the interactive REPL  (alias: i)")
	fmt.Println()
	fmt.Println("Help:")
	fmt.Println("  europa help <command>    Show detailed help for a command")
	fmt.Println("  europa --version         Show version information")
}

func showVersion() {
	fmt.Printf("Europa %s\n", version)
}

func showCommandHelp(command string) {
	if alias, ok := commandAliases[command]; ok {
		command = alias
	}
	help := map[string]string{
		"run": `europa run - execute a script

USAGE:
  europa run <file.scm>
  europa r <file.scm>              # using alias

DESCRIPTION:
  Reads, compiles, and runs every top-level form in file.scm against a
  fresh global environment with the standard library and SQL built-ins
  already bound.`,
		"check": `europa check - validate syntax without running

USAGE:
  europa check <file.scm>
  europa c <file.scm>              # using alias

DESCRIPTION:
  Reads every top-level datum in file.scm without compiling or running
  it, reporting the first syntax error encountered.`,
		"repl": `europa repl - interactive read-eval-print loop

USAGE:
  europa repl
  europa i                         # using alias

DESCRIPTION:
  Evaluates one line at a time against a persistent global environment.
  Type :quit to exit.`,
	}
	if text, ok := help[command]; ok {
		fmt.Println(text)
		return
	}
	fmt.Printf("no detailed help available for %q\n", command)
}

func suggestCommand(cmd string) {
	commands := []string{"run", "check", "repl", "help", "version"}
	fmt.Fprintf(os.Stderr, "error: unknown command %q\n", cmd)
	for _, c := range commands {
		if levenshtein(cmd, c) <= 2 {
			fmt.Fprintf(os.Stderr, "did you mean %q?\n", c)
		}
	}
	fmt.Fprintln(os.Stderr, "run 'europa help' to see all available commands")
	os.Exit(1)
}

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min3(row[j]+1, row[j-1]+1, prev+cost)
			prev = cur
		}
	}
	return row[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

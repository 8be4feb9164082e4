// robson is the command-line entry point wiring internal/iohost and
// internal/term (the capabilities spec.md 6 names) into internal/compiler
// and internal/interpreter (the core spec.md 1-5 specifies).
//
// The top-level cli.App/Action/cli.Exit shape is grounded on
// chriskillpack-bbcdisasm's cmd/bbcdisasm/main.go; unlike bbcdisasm this
// CLI reads its mode from a second positional argument rather than a
// named subcommand, since spec.md 6 puts the file first
// (`<file.robson> run|compile|debug`), so app.Action parses c.Args()
// directly instead of registering app.Commands.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	cli "github.com/urfave/cli/v2"

	"robson/internal/bytecode"
	"robson/internal/compiler"
	"robson/internal/interpreter"
	"robson/internal/iohost"
	"robson/internal/term"
)

const version = "0.1.0"

func main() {
	host := iohost.New(os.Stdin, os.Stdout)

	app := &cli.App{
		Name:    "robson",
		Usage:   "compiler and interpreter for the robson esolang",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "generate", Usage: "read a line from stdin and emit a push-fragment for it"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("generate") {
				return runGenerate(host)
			}
			return dispatch(host, c.Args())
		},
	}

	if err := app.Run(sanitizeArgs(os.Args)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// sanitizeArgs drops any flag this app does not recognize, warning to
// stderr rather than failing outright, per spec.md 6's "unknown flags
// warn and continue" policy.
func sanitizeArgs(args []string) []string {
	known := map[string]bool{
		"--version": true, "-v": true,
		"--help": true, "-h": true,
		"--generate": true,
	}
	out := make([]string, 0, len(args))
	for _, a := range args {
		if strings.HasPrefix(a, "-") && !known[a] {
			fmt.Fprintf(os.Stderr, "warning: unknown flag %q ignored\n", a)
			continue
		}
		out = append(out, a)
	}
	return out
}

func dispatch(host *iohost.Host, args cli.Args) error {
	if args.Len() < 1 {
		return cli.Exit("usage: robson <file.robson> run|compile|debug [time]  |  robson <file.rbsn> [print]", 1)
	}
	file := args.First()

	switch {
	case strings.HasSuffix(file, ".rbsn"):
		if args.Get(1) == "print" {
			return runPrint(host, file)
		}
		return runCompiled(host, file)

	case strings.HasSuffix(file, ".robson"):
		mode := args.Get(1)
		timed := args.Get(2) == "time"
		switch mode {
		case "compile":
			return runCompileOnly(host, file)
		case "debug":
			return runSource(host, file, true, timed)
		case "run", "":
			return runSource(host, file, false, timed)
		default:
			return cli.Exit(fmt.Sprintf("unknown mode %q", mode), 1)
		}

	default:
		return cli.Exit("file must end in .robson or .rbsn", 1)
	}
}

func runCompileOnly(host *iohost.Host, file string) error {
	buf, err := compiler.CompileFile(host, file)
	if err != nil {
		return cli.Exit(err, 1)
	}
	outPath, err := host.WriteCompiled(file, buf)
	if err != nil {
		return cli.Exit(err, 1)
	}
	host.Println(outPath)
	host.Flush()
	return nil
}

func runSource(host *iohost.Host, file string, debug, timed bool) error {
	buf, err := compiler.CompileFile(host, file)
	if err != nil {
		return cli.Exit(err, 1)
	}
	return execute(host, buf, debug, timed)
}

func runCompiled(host *iohost.Host, file string) error {
	buf, err := host.ReadCompiled(file)
	if err != nil {
		return cli.Exit(err, 1)
	}
	return execute(host, buf, false, false)
}

func execute(host *iohost.Host, buf []byte, debug, timed bool) error {
	t := term.New()
	ip := interpreter.New(buf, host, t, debug)

	start := time.Now()
	runErr := ip.Run()
	elapsed := time.Since(start)

	host.Flush()
	if timed {
		host.Println(fmt.Sprintf("elapsed: %s", elapsed))
		host.Flush()
	}
	if runErr != nil {
		return cli.Exit(runErr, 1)
	}
	return nil
}

func runPrint(host *iohost.Host, file string) error {
	buf, err := host.ReadCompiled(file)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if len(buf)%bytecode.RecordSize != 0 {
		return cli.Exit(fmt.Sprintf("%s: length %d is not a multiple of %d", file, len(buf), bytecode.RecordSize), 1)
	}
	for i := 0; i < len(buf); i += bytecode.RecordSize {
		instr, err := bytecode.Decode(buf[i : i+bytecode.RecordSize])
		if err != nil {
			return cli.Exit(err, 1)
		}
		host.Println(fmt.Sprintf("%04d: %s", i/bytecode.RecordSize, instr))
	}
	host.Flush()
	return nil
}

// runGenerate reads one line from stdin and emits a source fragment that
// pushes each character's codepoint in reverse, exercising the
// push-abbreviation syntax (spec.md 4.1) for every character after the
// first.
func runGenerate(host *iohost.Host) error {
	line, err := host.ReadLine()
	if err != nil {
		return cli.Exit(err, 1)
	}
	runes := []rune(line)
	if len(runes) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("robson robson robson\n")
	sb.WriteString(fmt.Sprintf("comeu %d\n", runes[len(runes)-1]))
	for i := len(runes) - 2; i >= 0; i-- {
		sb.WriteString(fmt.Sprintf("comeu %d\n", runes[i]))
	}
	host.Print(sb.String())
	host.Flush()
	return nil
}

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// newConsoleCmd builds the interactive text-console client. It is meant to
// be an Interface unit's ExecStart (e.g. `ExecStart=cfti console`): the
// daemon spawns it and talks to it over the child's stdin/stdout using the
// text wire protocol from spec.md §4.F, so console reads that protocol off
// its own stdin and writes typed commands to its own stdout — there is no
// separate network hop.
func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive text-protocol console for a running jig",
		Long: `console is meant to run as a jig interface's backing process. It prints
every incoming bus event in a readable, colorized form and lets you type
commands (scenario, start, tests, abort, shutdown, ...) that are sent
straight back to the daemon.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole()
		},
	}
}

func runConsole() error {
	// fd 0/1 carry the protocol, not a terminal: the daemon owns this
	// process' stdin/stdout exactly like any other Interface ExecStart.
	// The operator's keystrokes instead come from the controlling
	// terminal directly, so the prompt reads from /dev/tty rather than
	// fighting the protocol stream over stdin.
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("console requires a controlling terminal: %w", err)
	}
	defer tty.Close()

	go printIncoming(os.Stdin, tty)

	rl, err := readline.NewEx(&readline.Config{
		Prompt: "cfti> ",
		Stdin:  tty,
		Stdout: tty,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fmt.Fprintln(os.Stdout, line)
	}
}

// printIncoming renders each protocol line from the daemon with a verb-
// appropriate color, the same ad hoc palette a human operator watching a
// factory floor jig would want: green for pass, red for fail, yellow for
// skip, cyan for lifecycle events. Lines go to w (the terminal), never to
// stdout, which carries commands back to the daemon.
func printIncoming(r *os.File, w io.Writer) {
	paint := func(attr color.Attribute) *color.Color {
		c := color.New(attr)
		c.EnableColor()
		return c
	}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		verb, _, _ := strings.Cut(line, " ")
		switch strings.ToUpper(verb) {
		case "PASS":
			paint(color.FgGreen).Fprintln(w, line)
		case "FAIL":
			paint(color.FgRed).Fprintln(w, line)
		case "SKIP":
			paint(color.FgYellow).Fprintln(w, line)
		case "START", "FINISH", "RUNNING":
			paint(color.FgCyan).Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}
}

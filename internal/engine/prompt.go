package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"github.com/sells-group/ticker-crosswalk/internal/model"
)

// Selection is the outcome of one interactive disambiguation.
type Selection struct {
	Index       int  // 1-based index into the candidate list; 0 when skipped
	Skip        bool // operator declined every candidate
	Interrupted bool // prompt ended by interrupt; caller must flush state
}

// Prompter decides among surviving candidates when the engine cannot. The
// blocking read is the pipeline's only suspension point.
type Prompter interface {
	Select(ctx context.Context, feedName, ticker string, candidates []model.Candidate) Selection
}

// TerminalPrompter implements Prompter over stdin/stdout. Accepted inputs:
// 1..N selects a candidate, N+1 or empty input skips, anything else
// re-prompts. An interrupt during the read ends the prompt as a skip and is
// reported so the run loop can persist progress immediately. When stdin is
// not a terminal every prompt resolves to skip, keeping batch runs
// deterministic.
//
// One reader goroutine is started lazily on the first prompt and feeds every
// subsequent prompt; a per-prompt scanner would buffer ahead of the operator
// and steal lines meant for later prompts.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	readOnce sync.Once
	lines    chan string
	readErr  error // set before lines is closed
}

// NewTerminalPrompter builds a prompter on the process's stdin/stdout.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stdout}
}

func (p *TerminalPrompter) interactive() bool {
	f, ok := p.In.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func (p *TerminalPrompter) startReader() {
	p.readOnce.Do(func() {
		p.lines = make(chan string)
		go func() {
			scanner := bufio.NewScanner(p.In)
			for scanner.Scan() {
				p.lines <- scanner.Text()
			}
			p.readErr = scanner.Err()
			close(p.lines)
		}()
	})
}

// Select runs the selection protocol for one feed entry.
func (p *TerminalPrompter) Select(ctx context.Context, feedName, ticker string, candidates []model.Candidate) Selection {
	if !p.interactive() {
		return Selection{Skip: true}
	}
	return p.selectLoop(ctx, feedName, ticker, candidates)
}

func (p *TerminalPrompter) selectLoop(ctx context.Context, feedName, ticker string, candidates []model.Candidate) Selection {
	p.startReader()
	p.render(feedName, ticker, candidates)
	skipNum := len(candidates) + 1

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	for {
		fmt.Fprint(p.Out, "Your choice: ")
		select {
		case <-ctx.Done():
			return Selection{Skip: true, Interrupted: true}
		case <-interrupt:
			fmt.Fprintln(p.Out, "\nInterrupted. Saving progress...")
			return Selection{Skip: true, Interrupted: true}
		case line, ok := <-p.lines:
			if !ok {
				if p.readErr != nil {
					return Selection{Skip: true, Interrupted: true}
				}
				fmt.Fprintln(p.Out, "\nInput closed. Skipped.")
				return Selection{Skip: true}
			}
			choice := strings.TrimSpace(line)
			if choice == "" {
				fmt.Fprintln(p.Out, "Skipped.")
				return Selection{Skip: true}
			}
			n, err := strconv.Atoi(choice)
			if err != nil {
				fmt.Fprintln(p.Out, "Please enter a valid number.")
				continue
			}
			switch {
			case n >= 1 && n <= len(candidates):
				fmt.Fprintf(p.Out, "Selected: %s\n", candidates[n-1].Name)
				return Selection{Index: n}
			case n == skipNum:
				fmt.Fprintln(p.Out, "Skipped.")
				return Selection{Skip: true}
			default:
				fmt.Fprintf(p.Out, "Enter a number from 1 to %d (1-%d = pick, %d = skip).\n",
					skipNum, len(candidates), skipNum)
			}
		}
	}
}

func (p *TerminalPrompter) render(feedName, ticker string, candidates []model.Candidate) {
	fmt.Fprintf(p.Out, "\nFeed company: %s (%s)\n", feedName, ticker)
	fmt.Fprintln(p.Out, "No exact match found. Select a company or skip:")

	t := table.NewWriter()
	t.SetOutputMirror(p.Out)
	t.AppendHeader(table.Row{"#", "Registry name", "Confidence"})
	for i, c := range candidates {
		t.AppendRow(table.Row{i + 1, c.Name, fmt.Sprintf("%.1f%%", c.Score)})
	}
	t.AppendRow(table.Row{len(candidates) + 1, "Skip (not in registry)", ""})
	t.SetStyle(table.StyleLight)
	t.Render()
}

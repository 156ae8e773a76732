package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Console runs a Session behind a readline prompt.
type Console struct {
	rl      *readline.Instance
	session *Session
}

// NewConsole creates the readline instance. The session should write to
// Stdout of the returned console; use NewSession(console.Stdout(), ...)
// and then Attach.
func NewConsole() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mailbox> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{rl: rl}, nil
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("new"),
		readline.PcItem("sub"),
		readline.PcItem("unsub"),
		readline.PcItem("set"),
		readline.PcItem("insert"),
		readline.PcItem("remove"),
		readline.PcItem("replace"),
		readline.PcItem("queue",
			readline.PcItem("on"),
			readline.PcItem("off"),
			readline.PcItem("flush"),
		),
		readline.PcItem("status"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Stdout returns a writer that coordinates with the prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that coordinates with the prompt.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Attach sets the session driven by Run.
func (c *Console) Attach(s *Session) {
	c.session = s
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.session.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		quit, err := c.session.Execute(input)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		}
		if quit {
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}
	}
}

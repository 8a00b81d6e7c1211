package keypad

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Console reads key sequences from an interactive prompt. Each submitted
// line is fed to the controller one key at a time, so "0258" and "55*55#"
// behave like the same presses on the physical pad.
type Console struct {
	*Stream
	rl *readline.Instance
	pw *io.PipeWriter
}

// NewConsole opens a readline prompt on the terminal.
func NewConsole(prompt string) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("opening console: %w", err)
	}
	return newConsole(rl), nil
}

// lineReader is the part of readline.Instance the console uses.
type lineReader interface {
	Readline() (string, error)
}

func newConsole(rl *readline.Instance) *Console {
	pr, pw := io.Pipe()
	c := &Console{Stream: NewStream(pr), rl: rl, pw: pw}
	go pumpLines(rl, pw)
	return c
}

// pumpLines copies prompt lines into w until the prompt ends. Ctrl-C and
// Ctrl-D both end input.
func pumpLines(lr lineReader, w *io.PipeWriter) {
	for {
		line, err := lr.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				err = nil
			}
			w.CloseWithError(err) //nolint:errcheck // Always nil
			return
		}
		if _, err := io.WriteString(w, strings.TrimSpace(line)); err != nil {
			return
		}
	}
}

// Stdout returns a writer that prints above the prompt without corrupting
// the line being edited.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Close ends the prompt.
func (c *Console) Close() error {
	c.pw.Close() //nolint:errcheck // Pipe close never fails
	if err := c.rl.Close(); err != nil {
		return fmt.Errorf("closing console: %w", err)
	}
	return nil
}

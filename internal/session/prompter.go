package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ErrNoQuestion is returned when input ends or is interrupted before a
// question is entered.
var ErrNoQuestion = errors.New("no question entered")

// Prompter shows prompt and reads one line from the operator.
type Prompter interface {
	Prompt(ctx context.Context, prompt string) (string, error)
}

// LinePrompter reads from any reader, e.g. piped stdin.
type LinePrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	if out == nil {
		out = io.Discard
	}
	return &LinePrompter{reader: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Prompt(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := io.WriteString(p.out, prompt); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read line: %w", err)
		}
		if line == "" {
			return "", ErrNoQuestion
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadlinePrompter is used when stdin is a terminal; it adds line editing and
// optional persistent history.
type ReadlinePrompter struct {
	rl *readline.Instance
}

func NewReadlinePrompter(historyFile string) (*ReadlinePrompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize readline: %w", err)
	}
	return &ReadlinePrompter{rl: rl}, nil
}

func (p *ReadlinePrompter) Prompt(ctx context.Context, prompt string) (string, error) {
	p.rl.SetPrompt(prompt)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = p.rl.Close()
		case <-done:
		}
	}()

	line, err := p.rl.Readline()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", ErrNoQuestion
		}
		return "", fmt.Errorf("readline: %w", err)
	}
	return line, nil
}

func (p *ReadlinePrompter) Close() error {
	return p.rl.Close()
}

package main

import (
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

var errAborted = errors.New("aborted")

// linePrompter reads answers with line editing, so a typo in the title can
// be fixed before pressing enter.
type linePrompter struct {
	rl *readline.Instance
}

func newLinePrompter(stdin io.ReadCloser, stdout, stderr io.Writer) (*linePrompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              "> ",
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
		Stdin:               stdin,
		Stdout:              stdout,
		Stderr:              stderr,
	})
	if err != nil {
		return nil, err
	}
	return &linePrompter{rl: rl}, nil
}

func (p *linePrompter) Prompt(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if err != nil {
		if isEOF(err) {
			return "", errAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *linePrompter) Close() error {
	return p.rl.Close()
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}

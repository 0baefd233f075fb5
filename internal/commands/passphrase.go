package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var errPassphraseMismatch = errors.New("passphrases do not match")

// prompter reads passphrases without echo on a terminal and line by line otherwise
type prompter struct {
	in     io.Reader
	lines  *bufio.Reader
	prompt io.Writer
}

func newPrompter(in io.Reader, prompt io.Writer) *prompter {
	return &prompter{in: in, lines: bufio.NewReader(in), prompt: prompt}
}

func (p *prompter) read(label string) (string, error) {
	fmt.Fprint(p.prompt, label)

	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.prompt)
		if err != nil {
			return "", fmt.Errorf("read passphrase: %w", err)
		}
		return string(secret), nil
	}

	line, err := p.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks twice and fails when the answers differ
func (p *prompter) confirm(label string) (string, error) {
	first, err := p.read(label)
	if err != nil {
		return "", err
	}
	second, err := p.read("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPassphraseMismatch
	}
	return first, nil
}

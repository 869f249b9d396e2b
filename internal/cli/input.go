package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// LinePrompter reads answers line by line. It serves piped input and
// keyboard-wedge barcode scanners, which type the code followed by Enter.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter over r, echoing labels to w
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(r), out: w}
}

// Prompt prints label and reads one line. EOF answers with "".
func (p *LinePrompter) Prompt(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")

	// a bare Enter takes the default; EOF cancels
	if line == "" && err == nil {
		return def, nil
	}
	return line, nil
}

// Scan reads one barcode line
func (p *LinePrompter) Scan(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.Prompt("Scan or type the barcode", "")
}

// TermPrompter asks questions on an interactive terminal
type TermPrompter struct{}

// Prompt shows an editable prompt. Ctrl+C and Ctrl+D cancel with "".
func (TermPrompter) Prompt(label, def string) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
	}

	answer, err := p.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return "", nil
	}
	return answer, err
}

// Scan asks for a barcode
func (t TermPrompter) Scan(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return t.Prompt("Scan or type the barcode", "")
}

// StaticScanner returns a code given on the command line
type StaticScanner string

func (s StaticScanner) Scan(context.Context) (string, error) {
	return string(s), nil
}

// isTerminal checks if both stdin and stdout are attached to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

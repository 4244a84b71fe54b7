// Package console implements line-based terminal input and output for the
// interactive shell.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Console reads answers line by line and writes styled messages.
type Console struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal behind in, or -1.
	fd  int

	title   lipgloss.Style
	info    lipgloss.Style
	errorSt lipgloss.Style
	log     lipgloss.Style
}

// New creates a console over in and out. Password input is hidden when in is
// a terminal.
func New(in io.Reader, out io.Writer) *Console {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	r := lipgloss.NewRenderer(out)
	return &Console{
		in:      bufio.NewReader(in),
		out:     out,
		fd:      fd,
		title:   r.NewStyle().Bold(true),
		info:    r.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		errorSt: r.NewStyle().Foreground(lipgloss.Color("#e53935")),
		log:     r.NewStyle().Foreground(lipgloss.Color("#2196F3")).Italic(true),
	}
}

// Prompt prints label and returns the next line without its line ending.
// io.EOF is returned when the input is exhausted.
func (c *Console) Prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Password reads a line without echoing it when the input is a terminal.
func (c *Console) Password(label string) (string, error) {
	if c.fd < 0 {
		return c.Prompt(label)
	}
	fmt.Fprint(c.out, label)
	b, err := term.ReadPassword(c.fd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Confirm asks a Y/N question. Any answer other than y or n reports ok=false.
func (c *Console) Confirm(question string) (yes, ok bool, err error) {
	answer, err := c.Prompt(question + " (Y/N) ")
	if err != nil {
		return false, false, err
	}
	switch strings.ToUpper(strings.TrimSpace(answer)) {
	case "Y":
		return true, true, nil
	case "N":
		return false, true, nil
	}
	return false, false, nil
}

// Print writes each line as is.
func (c *Console) Print(lines ...string) {
	for _, l := range lines {
		fmt.Fprintln(c.out, l)
	}
}

// Title writes a bold heading.
func (c *Console) Title(s string) {
	fmt.Fprintln(c.out, c.title.Render(s))
}

func (c *Console) Info(format string, args ...any) {
	fmt.Fprintln(c.out, c.info.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) Error(format string, args ...any) {
	fmt.Fprintln(c.out, c.errorSt.Render(fmt.Sprintf(format, args...)))
}

// Log writes a progress note such as "Generating cards...".
func (c *Console) Log(format string, args ...any) {
	fmt.Fprintln(c.out, c.log.Render(fmt.Sprintf(format, args...)))
}

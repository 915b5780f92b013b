package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/mattn/go-isatty"

	npmflowerrors "npmflow.dev/npmflow/internal/errors"
	"npmflow.dev/npmflow/internal/workflow"
)

// checkInteractiveAllowed returns an error if interactive mode is disabled for testing
func checkInteractiveAllowed() error {
	if os.Getenv("NPMFLOW_TEST_NO_INTERACTIVE") != "" {
		return npmflowerrors.ErrInteractiveDisabled
	}
	return nil
}

// IsTTY returns true if stdin and stdout are both terminals
func IsTTY() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewPrompter returns a survey prompter when in is the terminal's stdin and
// a line prompter reading from in otherwise
func NewPrompter(in io.Reader, out io.Writer) workflow.Prompter {
	if f, ok := in.(*os.File); ok && f == os.Stdin && IsTTY() {
		return SurveyPrompter{}
	}
	return NewLinePrompter(in, out)
}

// SurveyPrompter asks with survey's interactive input
type SurveyPrompter struct{}

// Input implements workflow.Prompter
func (SurveyPrompter) Input(message, defaultValue string) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}

	var answer string
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", npmflowerrors.ErrCanceled
		}
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// LinePrompter reads one line per question, for pipes and CI.
// Input is consumed a byte at a time so later subprocesses sharing stdin
// see everything after the answer.
type LinePrompter struct {
	in  io.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter reading answers from in and writing questions to out
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: in, out: out}
}

// Input implements workflow.Prompter. An empty answer or end of input selects the default.
func (p *LinePrompter) Input(message, defaultValue string) (string, error) {
	if defaultValue != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", message, defaultValue)
	} else {
		fmt.Fprintf(p.out, "%s: ", message)
	}

	line, err := p.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

// readLine reads up to and including the next newline
func (p *LinePrompter) readLine() (string, error) {
	var line strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := p.in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return line.String(), nil
			}
			line.WriteByte(buf[0])
		}
		if err != nil {
			return line.String(), err
		}
	}
}

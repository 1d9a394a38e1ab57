package eastmoney

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Solver turns a captcha challenge image into candidate text. Recognition may
// be wrong; the login loop validates the shape and fetches a new challenge
// when the answer is not plausible.
type Solver interface {
	Solve(image []byte) (string, error)
}

// SolverFunc adapts a plain function to the Solver interface.
type SolverFunc func(image []byte) (string, error)

func (f SolverFunc) Solve(image []byte) (string, error) { return f(image) }

// CommandSolver recognizes captchas by running an external OCR command with
// the image file path appended as last argument, and reading the recognized
// text from its standard output.
type CommandSolver struct {
	Name string
	Args []string
}

func (c CommandSolver) Solve(image []byte) (string, error) {
	f, err := os.CreateTemp("", "stockmon-captcha-*.png")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(image); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	out, err := exec.Command(c.Name, append(c.Args, f.Name())...).Output()
	if err != nil {
		return "", fmt.Errorf("ocr command %q failed: %w", c.Name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Package input reads the password to check without exposing it in argv,
// shell history, or logs.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/breachwatch/pwncheck/internal/errors"
	"github.com/breachwatch/pwncheck/internal/utils"
	"golang.org/x/term"
)

// StdinPath selects standard input as the password source.
const StdinPath = "-"

var (
	stdin           io.Reader = os.Stdin
	isTerminalFn              = term.IsTerminal
	readPasswordFn            = term.ReadPassword
)

// ReadPassword returns the password from the given source path. Only the
// first line is used; the trailing line break is stripped. An empty or
// missing source is an input error, reported before any network activity.
func ReadPassword(path string) (string, error) {
	if path == "" {
		return "", errors.WrapInputError("read_password",
			fmt.Errorf("%w: no password source given", errors.ErrInvalidInput))
	}
	if path == StdinPath {
		return readFirstLine(stdin, "stdin")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WrapInputError("read_password", err)
	}
	password := utils.FirstLine(string(data))
	if password == "" {
		return "", errors.WrapInputError("read_password",
			fmt.Errorf("%w: password file %s is empty", errors.ErrInvalidInput, path))
	}
	return password, nil
}

// PromptPassword reads the password interactively with echo disabled.
// It fails when stdin is not a terminal so scripted callers get a clear
// error instead of a hang.
func PromptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminalFn(fd) {
		return "", errors.WrapInputError("prompt_password",
			fmt.Errorf("%w: stdin is not a terminal; use --file or pipe to -", errors.ErrInvalidInput))
	}

	fmt.Fprint(os.Stderr, "Password to check: ")
	raw, err := readPasswordFn(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.WrapInputError("prompt_password", err)
	}

	password := string(raw)
	if password == "" {
		return "", errors.WrapInputError("prompt_password",
			fmt.Errorf("%w: empty password", errors.ErrInvalidInput))
	}
	return password, nil
}

func readFirstLine(r io.Reader, name string) (string, error) {
	reader := bufio.NewReader(r)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.WrapInputError("read_password", err)
	}
	password := utils.FirstLine(line)
	if password == "" {
		return "", errors.WrapInputError("read_password",
			fmt.Errorf("%w: no password on %s", errors.ErrInvalidInput, name))
	}
	return password, nil
}

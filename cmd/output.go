package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/bnema/orca/internal/domain"
	"github.com/spf13/cobra"
)

var errExecutionFailed = errors.New("execution failed")

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeExecution prints interpreter output the way a terminal session would:
// stdout and the result value on stdout, stderr on stderr. A failed execution
// is reported through errExecutionFailed so the exit code is non-zero.
func writeExecution(cmd *cobra.Command, result domain.ExecutionResult) error {
	if result.Stdout != "" {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), ensureNewline(result.Stdout))
	}
	if result.Result != nil {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), *result.Result)
	}
	if result.Stderr != "" {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), ensureNewline(result.Stderr))
	}
	if !result.Success {
		return errExecutionFailed
	}
	return nil
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// readCode takes code from --file ("-" is stdin), else from the arguments,
// else from stdin.
func readCode(cmd *cobra.Command, args []string, path string) (string, error) {
	switch {
	case path == "-":
		return readAll(cmd.InOrStdin())
	case path != "":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read code file: %w", err)
		}
		return string(raw), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		return readAll(cmd.InOrStdin())
	}
}

func readAll(r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read code from stdin: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", errors.New("no code given")
	}
	return string(raw), nil
}

func sanitizeForTerminal(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
}

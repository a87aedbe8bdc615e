package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// usageError marks errors caused by bad flags or arguments. They exit with
// code 2.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

// pointerSeed sets the pointer of one row before rendering. Row is either a
// 1-based row number or a subject name.
type pointerSeed struct {
	Row   string
	Value int
}

// pointerFlag collects repeated --pointer ROW=VALUE flags.
type pointerFlag struct {
	seeds []pointerSeed
}

var _ pflag.Value = (*pointerFlag)(nil)

func (f *pointerFlag) String() string {
	parts := make([]string, 0, len(f.seeds))
	for _, s := range f.seeds {
		parts = append(parts, fmt.Sprintf("%s=%d", s.Row, s.Value))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (f *pointerFlag) Set(raw string) error {
	row, value, ok := strings.Cut(raw, "=")
	row = strings.TrimSpace(row)
	if !ok || row == "" {
		return fmt.Errorf("expected ROW=VALUE, got %q", raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("pointer value for %q must be an integer: %w", row, err)
	}
	f.seeds = append(f.seeds, pointerSeed{Row: row, Value: n})
	return nil
}

func (f *pointerFlag) Type() string { return "ROW=VALUE" }

package console

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// readError marks a failure of the underlying reader.
type readError struct {
	err error
}

func (e *readError) Error() string { return fmt.Sprintf("failed to read input: %v", e.err) }
func (e *readError) Unwrap() error { return e.err }

func isReadError(err error) bool {
	var re *readError
	return errors.As(err, &re)
}

// readLine returns the next line without its line terminator, or io.EOF
// once the input is exhausted.
func (s *Session) readLine() (string, error) {
	if s.in.Scan() {
		return strings.TrimRight(s.in.Text(), "\r"), nil
	}
	if err := s.in.Err(); err != nil {
		return "", &readError{err: err}
	}
	return "", io.EOF
}

func (s *Session) println(msg string) {
	_, _ = fmt.Fprintln(s.out, msg)
}

// printf formats numbers for the session language.
func (s *Session) printf(format string, args ...interface{}) {
	_, _ = s.printer.Fprintf(s.out, format, args...)
}

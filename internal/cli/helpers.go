package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// InterruptError is the cancellation cause recorded when a signal stops a command.
type InterruptError struct {
	Signal os.Signal
}

func (e *InterruptError) Error() string {
	return "interrupted by " + e.Signal.String()
}

// Unwrap lets errors.Is(err, context.Canceled) match an interruption.
func (e *InterruptError) Unwrap() error {
	return context.Canceled
}

// WithInterrupt returns a context cancelled on SIGINT or SIGTERM with an
// *InterruptError cause. Calling stop releases the signal handler.
func WithInterrupt(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return cancelOnSignal(parent, sigCh, func() { signal.Stop(sigCh) })
}

func cancelOnSignal(parent context.Context, sigCh <-chan os.Signal, release func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	go func() {
		defer release()
		select {
		case sig := <-sigCh:
			cancel(&InterruptError{Signal: sig})
		case <-ctx.Done():
		}
	}()
	return ctx, func() { cancel(context.Canceled) }
}

// Interrupted returns the signal that cancelled ctx, or nil.
func Interrupted(ctx context.Context) os.Signal {
	var ie *InterruptError
	if errors.As(context.Cause(ctx), &ie) {
		return ie.Signal
	}
	return nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// IsInterrupted reports whether err only signals that the user stopped the command.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// HandleExecutionError maps interruptions to a clean exit.
func HandleExecutionError(err error) error {
	if err == nil || IsInterrupted(err) {
		return nil
	}
	return err
}

// ReadTokens reads one token per line, skipping blank lines.
// Tokens may contain spaces since a gesture can map to a multi-word phrase.
func ReadTokens(r io.Reader) ([]string, error) {
	var tokens []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if t := strings.TrimSpace(sc.Text()); t != "" {
			tokens = append(tokens, t)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tokens: %w", err)
	}
	return tokens, nil
}

// PipedTokens returns the tokens piped on f, or nil when f is an interactive terminal.
func PipedTokens(f *os.File) ([]string, error) {
	if term.IsTerminal(int(f.Fd())) {
		return nil, nil
	}
	return ReadTokens(f)
}

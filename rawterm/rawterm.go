// Package rawterm puts the controlling terminal in raw mode for the example
// serial console. It is intended only for use by examples.
//
// Newlines are always LF (not CR or CRLF). While terminals generally use a
// different format (CR when pressing the enter key and CRLF for newline) the
// format returned by Getchar and expected as input by Putchar is a single LF
// as newline symbol.
package rawterm

import (
	"io"
	"os"

	"golang.org/x/term"
)

var terminalState *term.State

// Getchar returns a single character from stdin. Newlines are encoded with a
// single LF ('\n'). It returns io.EOF once stdin is closed.
func Getchar() (byte, error) {
	var b [1]byte
	n, err := os.Stdin.Read(b[:])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	if b[0] == '\r' {
		return '\n', nil
	}
	return b[0], nil
}

// Putchar writes a single character to the terminal. Newlines are expected to
// be encoded as LF symbols ('\n').
func Putchar(ch byte) {
	if ch == '\n' && terminalState != nil {
		// Terminals in raw mode expect CRLF.
		Putchar('\r')
	}
	b := [1]byte{ch}
	os.Stdout.Write(b[:])
}

// Write writes p with Putchar.
func Write(p []byte) {
	for _, ch := range p {
		Putchar(ch)
	}
}

// Configure initializes the terminal for use by raw reading/writing (using
// Getchar/Putchar). It must be restored after use with Restore. You can do this
// with the following code:
//
//	rawterm.Configure()
//	defer rawterm.Restore()
//	// use raw terminal features
//
// When stdin is not a terminal Configure does nothing.
func Configure() error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	terminalState = state
	return nil
}

// Restore restores the state to before a call to Configure.
func Restore() error {
	if terminalState == nil {
		return nil
	}
	state := terminalState
	terminalState = nil
	return term.Restore(int(os.Stdin.Fd()), state)
}

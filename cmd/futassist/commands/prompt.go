package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// readCodePrompt asks for the 2FA code on out and reads a line from in.
func readCodePrompt(in io.Reader, out io.Writer) func(ctx context.Context) (string, error) {
	reader := bufio.NewReader(in)
	return func(ctx context.Context) (string, error) {
		type line struct {
			text string
			err  error
		}
		result := make(chan line, 1)

		fmt.Fprint(out, "Two-Factor Authentication Code from email: ")
		go func() {
			text, err := reader.ReadString('\n')
			result <- line{text: text, err: err}
		}()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case l := <-result:
			code := strings.TrimSpace(l.text)
			if code == "" && l.err != nil {
				return "", fmt.Errorf("read 2FA code: %w", l.err)
			}
			if code == "" {
				return "", fmt.Errorf("empty 2FA code")
			}
			return code, nil
		}
	}
}

func stdinCodePrompt() func(ctx context.Context) (string, error) {
	return readCodePrompt(os.Stdin, os.Stderr)
}

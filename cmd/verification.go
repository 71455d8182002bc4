package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/bnema/repostctl/internal/domain"
)

// promptVerifier asks for challenge codes on the command's terminal. It is
// bound to the command streams once cobra has resolved them.
type promptVerifier struct {
	mu      sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	suspend func() (resume func())
}

func (v *promptVerifier) bind(in io.Reader, out io.Writer) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.in = bufio.NewReader(in)
	v.out = out
}

// holdDisplay registers a hook that pauses live terminal output while a
// prompt is shown.
func (v *promptVerifier) holdDisplay(suspend func() (resume func())) (release func()) {
	v.mu.Lock()
	v.suspend = suspend
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		v.suspend = nil
		v.mu.Unlock()
	}
}

func (v *promptVerifier) RequestCode(ctx context.Context, username string, kind domain.ChallengeKind) (string, bool, error) {
	prompt := fmt.Sprintf("%s verification required for @%s. Enter the code (empty line cancels): ", kind.Label(), username)
	code, err := v.readLine(ctx, prompt)
	if errors.Is(err, io.EOF) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if code == "" {
		return "", false, nil
	}

	return code, true, nil
}

func (v *promptVerifier) readLine(ctx context.Context, prompt string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.in == nil {
		return "", io.EOF
	}
	if v.suspend != nil {
		resume := v.suspend()
		defer resume()
	}

	_, _ = fmt.Fprint(v.out, prompt)

	type line struct {
		text string
		err  error
	}
	lineCh := make(chan line, 1)
	go func() {
		text, err := v.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && text != "") {
			lineCh <- line{err: err}
			return
		}
		lineCh <- line{text: strings.TrimSpace(text)}
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(v.out)
		return "", ctx.Err()
	case got := <-lineCh:
		return got.text, got.err
	}
}

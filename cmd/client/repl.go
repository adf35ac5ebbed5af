package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/DoyleJ11/mafia-client/internal/console"
	"github.com/DoyleJ11/mafia-client/internal/manager"
	"github.com/DoyleJ11/mafia-client/internal/session"
)

// repl reads commands until EOF, "quit" or ctx is done. "leave" gives up the
// seat for good; quitting keeps it for a later resume.
func repl(ctx context.Context, m *manager.Manager, sess *session.Session, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch strings.TrimSpace(line) {
			case "quit":
				return nil
			case "leave":
				return sess.Leave(ctx)
			case "help":
				for _, usage := range console.Help() {
					fmt.Fprintln(out, " ", usage)
				}
				for _, topic := range console.Topics {
					fmt.Fprintln(out, " ", topic)
				}
				fmt.Fprintln(out, "  leave\n  quit")
			default:
				word := strings.TrimSpace(line)
				var err error
				if slices.Contains(console.Topics, word) {
					err = console.Show(out, m.State(), word)
				} else {
					err = console.Execute(m, line)
				}
				if err != nil {
					fmt.Fprintln(out, err)
				}
			}
		}
	}
}

package console

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/phuslu/log"
)

// Run reads commands line by line from in and writes replies to out.
// Blocks until "quit" is read or ctx is cancelled, returning nil, or until in
// is exhausted, returning io.EOF.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	errc := make(chan error, 1)
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
		errc <- sc.Err()
	}()

	fmt.Fprint(out, "> ")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("console stopped")
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					if err != nil {
						return err
					}
				default:
				}
				return io.EOF
			}
			if line == "quit" || line == "exit" {
				return nil
			}
			if reply := c.HandleCommand(ctx, line); reply != "" {
				fmt.Fprintln(out, reply)
			}
			fmt.Fprint(out, "> ")
		}
	}
}

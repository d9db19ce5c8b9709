package router

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// PromptClient simulates the router interactively: each request is written
// to Out and the answer, `0` for done or `1` for no station left, is read
// from In. Requests are serialized so answers cannot interleave.
type PromptClient struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func NewPromptClient(in io.Reader, out io.Writer) *PromptClient {
	return &PromptClient{in: bufio.NewReader(in), out: out}
}

func (c *PromptClient) Pickup(ctx context.Context, t Target) (Status, error) {
	return c.ask(ctx, Pickup, t)
}

func (c *PromptClient) Drop(ctx context.Context, t Target) (Status, error) {
	return c.ask(ctx, Drop, t)
}

func (c *PromptClient) Drive(ctx context.Context, t Target) (Status, error) {
	return c.ask(ctx, Drive, t)
}

func (c *PromptClient) ask(ctx context.Context, action Action, t Target) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fmt.Fprintf(c.out, "router: %s %s\nanswer with 0 (done) or 1 (no station left): ", action, t)
		line, err := c.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		switch answer {
		case "0":
			return Done, nil
		case "1":
			return NoStationLeft, nil
		}
		if err != nil {
			return 0, fmt.Errorf("reading router answer: %w", err)
		}
		fmt.Fprintf(c.out, "invalid answer %q\n", answer)
	}
}

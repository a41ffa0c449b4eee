package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// CannedLLM replays a fixed reply instead of calling a model. The reply comes
// from Reply if set, otherwise from the file at Path.
type CannedLLM struct {
	Reply string
	Path  string
}

func (c *CannedLLM) Stream(ctx context.Context, _ Request, emit func(string) error) error {
	reply := c.Reply
	if reply == "" && c.Path != "" {
		b, err := os.ReadFile(c.Path)
		if err != nil {
			return fmt.Errorf("failed to read canned reply: %w", err)
		}
		reply = string(b)
	}

	for _, line := range strings.SplitAfter(reply, "\n") {
		if line == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(line); err != nil {
			return err
		}
	}
	return nil
}

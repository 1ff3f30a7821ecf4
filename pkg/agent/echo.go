package agent

import (
	"context"
	"fmt"
)

// EchoInvoker is a deterministic stand-in for a real orchestration-framework
// agent. It answers every invocation with its prefix and the message it
// received, which makes it useful for demos and smoke tests.
type EchoInvoker struct {
	Prefix string
}

func (echo *EchoInvoker) Invoke(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prefix := echo.Prefix

	if prefix == "" {
		prefix = "Echo"
	}

	return fmt.Sprintf("%s: %s", prefix, message), nil
}

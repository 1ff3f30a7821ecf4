package service

// Pluggable auth guards for the RPC endpoint. The goal is to let demos
// protect a server with a static bearer token or a signed JWT without
// pulling in a full identity stack; real deployments can implement Checker
// against whatever they use.

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/travelmesh/a2a-go/pkg/auth"
)

// rateLimitInterval is the window the server's request quota applies to.
const rateLimitInterval = time.Minute

// Checker validates an incoming RPC request. A non-nil error is reported
// to the caller as an authentication failure.
type Checker interface {
	Authorize(c fiber.Ctx) error
}

// BearerAuth accepts a single static bearer token.
type BearerAuth struct {
	Token string
}

func (b BearerAuth) Authorize(c fiber.Ctx) error {
	header := c.Get("Authorization")

	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return fmt.Errorf("missing bearer token")
	}

	if strings.TrimSpace(header[7:]) != b.Token {
		return fmt.Errorf("invalid bearer token")
	}

	return nil
}

// JWTAuth accepts any token signed by the given auth service.
type JWTAuth struct {
	Service *auth.Service
}

func (j JWTAuth) Authorize(c fiber.Ctx) error {
	return j.Service.Validate(c.Get("Authorization"))
}

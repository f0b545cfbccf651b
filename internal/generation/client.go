// Package generation wraps the generative backend behind a contract that
// always yields a value: one remote call per invocation, no internal retries,
// and every fault — network, quota, timeout, even a panic inside the SDK —
// comes back as a classified failure instead of crossing the pipeline
// boundary.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/krishimitra/agrichat/internal/providers/llm"
)

type FailureKind string

const (
	FailureTimeout  FailureKind = "timeout"
	FailureCanceled FailureKind = "canceled"
	FailureBackend  FailureKind = "backend"
)

type Failure struct {
	Kind        FailureKind
	Description string
}

// Result carries either the backend's trimmed response text or a failure,
// never both.
type Result struct {
	Text    string
	Failure *Failure
}

func (r Result) OK() bool { return r.Failure == nil }

type Client struct {
	provider llm.Provider
	timeout  time.Duration
	log      *logrus.Logger
}

// NewClient bounds every call by timeout (a caller context with an earlier
// deadline wins). timeout <= 0 falls back to 60s.
func NewClient(provider llm.Provider, timeout time.Duration, log *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log == nil {
		log = logrus.New()
	}
	return &Client{provider: provider, timeout: timeout, log: log}
}

// Generate performs exactly one backend call and never returns a fault.
func (c *Client) Generate(ctx context.Context, prompt string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("panic", r).Error("generation backend panicked")
			res = failure(FailureBackend, fmt.Sprintf("backend panic: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.provider.Answer(ctx, prompt)
	if err != nil {
		c.log.WithError(err).WithField("elapsed_ms", time.Since(start).Milliseconds()).
			Warn("generation failed")
		return classify(ctx, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return failure(FailureBackend, "backend returned an empty response")
	}
	return Result{Text: text}
}

func classify(ctx context.Context, err error) Result {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return failure(FailureTimeout, "the model took too long to respond")
	case errors.Is(err, context.Canceled):
		return failure(FailureCanceled, "the request was canceled")
	default:
		return failure(FailureBackend, err.Error())
	}
}

func failure(kind FailureKind, desc string) Result {
	return Result{Failure: &Failure{Kind: kind, Description: desc}}
}

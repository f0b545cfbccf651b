package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	answer string
	err    error
	block  bool
	panics bool

	calls int
}

func (s *stubProvider) Answer(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.panics {
		panic("sdk blew up")
	}
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.answer, s.err
}

func (s *stubProvider) Close() error { return nil }

func TestGenerateTrimsResponse(t *testing.T) {
	p := &stubProvider{answer: "  spray neem oil weekly \n"}
	c := NewClient(p, time.Second, nil)

	res := c.Generate(context.Background(), "prompt")

	require.True(t, res.OK())
	assert.Equal(t, "spray neem oil weekly", res.Text)
	assert.Equal(t, 1, p.calls)
}

func TestGenerateMakesExactlyOneCall(t *testing.T) {
	p := &stubProvider{err: errors.New("quota exceeded")}
	c := NewClient(p, time.Second, nil)

	c.Generate(context.Background(), "prompt")

	// no internal retries
	assert.Equal(t, 1, p.calls)
}

func TestGenerateClassifiesBackendError(t *testing.T) {
	p := &stubProvider{err: errors.New("401 unauthorized")}
	c := NewClient(p, time.Second, nil)

	res := c.Generate(context.Background(), "prompt")

	require.False(t, res.OK())
	assert.Equal(t, FailureBackend, res.Failure.Kind)
	assert.Contains(t, res.Failure.Description, "401")
	assert.Empty(t, res.Text)
}

func TestGenerateClassifiesTimeout(t *testing.T) {
	p := &stubProvider{block: true}
	c := NewClient(p, 20*time.Millisecond, nil)

	res := c.Generate(context.Background(), "prompt")

	require.False(t, res.OK())
	assert.Equal(t, FailureTimeout, res.Failure.Kind)
	assert.NotEmpty(t, res.Failure.Description)
}

func TestGenerateContainsPanic(t *testing.T) {
	p := &stubProvider{panics: true}
	c := NewClient(p, time.Second, nil)

	var res Result
	assert.NotPanics(t, func() { res = c.Generate(context.Background(), "prompt") })

	require.False(t, res.OK())
	assert.Equal(t, FailureBackend, res.Failure.Kind)
	assert.Contains(t, res.Failure.Description, "panic")
}

func TestGenerateRejectsEmptyResponse(t *testing.T) {
	p := &stubProvider{answer: "   "}
	c := NewClient(p, time.Second, nil)

	res := c.Generate(context.Background(), "prompt")

	require.False(t, res.OK())
	assert.Equal(t, FailureBackend, res.Failure.Kind)
}

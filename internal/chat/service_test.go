package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishimitra/agrichat/internal/generation"
	"github.com/krishimitra/agrichat/internal/models"
	"github.com/krishimitra/agrichat/internal/repositories/memory"
	"github.com/krishimitra/agrichat/internal/topic"
	"github.com/krishimitra/agrichat/internal/utils"
)

type stubLLM struct {
	mu      sync.Mutex
	answer  string
	err     error
	calls   int
	prompts []string
}

func (s *stubLLM) Answer(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.answer, s.err
}

func (s *stubLLM) Close() error { return nil }

func newTestService(t *testing.T, llm *stubLLM) (*Service, *memory.TurnRepo) {
	t.Helper()

	store := memory.NewTurnRepo()
	rec, err := NewRecorder(context.Background(), store)
	require.NoError(t, err)

	gate := topic.NewGate(topic.DefaultKeywords)
	gen := generation.NewClient(llm, time.Second, nil)
	return NewService(gate, gen, rec, "", nil, nil), store
}

func TestSubmitAcceptedRoundTrip(t *testing.T) {
	llm := &stubLLM{answer: "Spray neem oil and introduce ladybugs."}
	svc, _ := newTestService(t, llm)

	const q = "How do I control aphids on tomato plants?"
	res, err := svc.SubmitUtterance(context.Background(), q, "en")
	require.NoError(t, err)

	assert.True(t, res.WasAccepted)
	assert.Equal(t, "Spray neem oil and introduce ladybugs.", res.DisplayText)

	// the backend was invoked exactly once, with the utterance inside the
	// composed prompt
	require.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.prompts[0], q)

	turns, err := svc.GetConversation(context.Background())
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	assert.Equal(t, q, turns[0].Text)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
	assert.Equal(t, res.DisplayText, turns[1].Text)
}

func TestSubmitRejectedRoundTrip(t *testing.T) {
	llm := &stubLLM{answer: "should never be used"}
	svc, _ := newTestService(t, llm)

	const q = "What's the weather like on Mars tonight for a party?"
	res, err := svc.SubmitUtterance(context.Background(), q, "en")
	require.NoError(t, err)

	assert.False(t, res.WasAccepted)
	assert.Equal(t, svc.RejectionMessage(), res.DisplayText)

	// rejected input never reaches the backend
	assert.Equal(t, 0, llm.calls)

	turns, err := svc.GetConversation(context.Background())
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, q, turns[0].Text)
	assert.Equal(t, svc.RejectionMessage(), turns[1].Text)
}

func TestSubmitBackendFailureIsContained(t *testing.T) {
	llm := &stubLLM{err: errors.New("connection refused")}
	svc, _ := newTestService(t, llm)

	res, err := svc.SubmitUtterance(context.Background(), "when should I harvest wheat", "en")
	require.NoError(t, err)

	assert.True(t, res.WasAccepted)
	assert.True(t, strings.HasPrefix(res.DisplayText, "Error: "))

	// the cycle still completes with its two records
	turns, err := svc.GetConversation(context.Background())
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
	assert.Contains(t, turns[1].Text, "connection refused")
}

func TestSubmitEmptyInputRecordsNothing(t *testing.T) {
	llm := &stubLLM{}
	svc, _ := newTestService(t, llm)

	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := svc.SubmitUtterance(context.Background(), in, "en")
		require.Error(t, err)
		assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	}

	turns, err := svc.GetConversation(context.Background())
	require.NoError(t, err)
	assert.Empty(t, turns)
	assert.Equal(t, 0, llm.calls)
}

func TestConcurrentCyclesNeverInterleavePairs(t *testing.T) {
	llm := &stubLLM{answer: "use drip irrigation"}
	svc, _ := newTestService(t, llm)

	const n = 25
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			q := fmt.Sprintf("question %d about my crop", i)
			_, err := svc.SubmitUtterance(context.Background(), q, "en")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	turns, err := svc.GetConversation(context.Background())
	require.NoError(t, err)
	require.Len(t, turns, 2*n)

	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, models.RoleUser, turns[i].Role, "index %d", i)
		assert.Equal(t, models.RoleAssistant, turns[i+1].Role, "index %d", i+1)
		assert.Equal(t, int64(i), turns[i].Seq)
		assert.Equal(t, int64(i+1), turns[i+1].Seq)
	}
}

func TestClearConversationIsIdempotent(t *testing.T) {
	llm := &stubLLM{answer: "rotate your crops"}
	svc, _ := newTestService(t, llm)

	_, err := svc.SubmitUtterance(context.Background(), "crop rotation schedule", "en")
	require.NoError(t, err)

	require.NoError(t, svc.ClearConversation(context.Background()))
	turns, err := svc.GetConversation(context.Background())
	require.NoError(t, err)
	assert.Empty(t, turns)

	// clearing an already-empty log is a no-op, not an error
	require.NoError(t, svc.ClearConversation(context.Background()))
	turns, err = svc.GetConversation(context.Background())
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestClearResetsSequence(t *testing.T) {
	llm := &stubLLM{answer: "mulch around the base"}
	svc, _ := newTestService(t, llm)

	_, err := svc.SubmitUtterance(context.Background(), "how thick should mulch be", "en")
	require.NoError(t, err)
	require.NoError(t, svc.ClearConversation(context.Background()))

	_, err = svc.SubmitUtterance(context.Background(), "mulch for tomato beds", "en")
	require.NoError(t, err)

	turns, err := svc.GetConversation(context.Background())
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, int64(0), turns[0].Seq)
	assert.Equal(t, int64(1), turns[1].Seq)
}

func TestRecorderSeedsSequenceFromExistingLog(t *testing.T) {
	store := memory.NewTurnRepo()
	rec, err := NewRecorder(context.Background(), store)
	require.NoError(t, err)
	require.NoError(t, rec.RecordCycle(context.Background(), "hello", "hi there", nil))

	// a fresh recorder over the same store continues the sequence
	rec2, err := NewRecorder(context.Background(), store)
	require.NoError(t, err)
	require.NoError(t, rec2.RecordCycle(context.Background(), "u", "a", nil))

	turns, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, int64(3), turns[3].Seq)
}

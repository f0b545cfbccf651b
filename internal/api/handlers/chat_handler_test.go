package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishimitra/agrichat/internal/chat"
	"github.com/krishimitra/agrichat/internal/generation"
	"github.com/krishimitra/agrichat/internal/models"
	"github.com/krishimitra/agrichat/internal/repositories/memory"
	"github.com/krishimitra/agrichat/internal/topic"
)

type fixedLLM struct{ answer string }

func (f *fixedLLM) Answer(context.Context, string) (string, error) { return f.answer, nil }
func (f *fixedLLM) Close() error                                   { return nil }

func newTestRouter(t *testing.T, answer string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewTurnRepo()
	rec, err := chat.NewRecorder(context.Background(), store)
	require.NoError(t, err)

	gen := generation.NewClient(&fixedLLM{answer: answer}, time.Second, nil)
	svc := chat.NewService(topic.NewGate(topic.DefaultKeywords), gen, rec, "", nil, nil)

	r := gin.New()
	r.POST("/chat", NewChatHandler(svc, nil, nil).Submit)
	conv := NewConversationHandler(svc)
	r.GET("/conversation", conv.List)
	r.POST("/conversation/clear", conv.Clear)
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatEndpointAccepted(t *testing.T) {
	r := newTestRouter(t, "Use sticky traps for whiteflies.")

	w := postJSON(r, "/chat", ChatRequest{Message: "whitefly pest on my tomato crop", Language: "en"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.WasAccepted)
	assert.Equal(t, "Use sticky traps for whiteflies.", resp.Reply)
	assert.Empty(t, resp.AudioBase64)
}

func TestChatEndpointRejected(t *testing.T) {
	r := newTestRouter(t, "unused")

	w := postJSON(r, "/chat", ChatRequest{Message: "recommend a good movie", Language: "en"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.WasAccepted)
	assert.Equal(t, topic.RejectionMessage, resp.Reply)
}

func TestChatEndpointMissingMessage(t *testing.T) {
	r := newTestRouter(t, "unused")

	w := postJSON(r, "/chat", map[string]string{"language": "en"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, "INVALID_ARGUMENT", string(apiErr.Code))
}

func TestConversationListAndClear(t *testing.T) {
	r := newTestRouter(t, "Sow after the first monsoon rain.")

	postJSON(r, "/chat", ChatRequest{Message: "when to sow millet seed"})
	postJSON(r, "/chat", ChatRequest{Message: "what about paddy"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conversation", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var listResp struct {
		Count int           `json:"count"`
		Turns []models.Turn `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Equal(t, 4, listResp.Count)
	assert.Equal(t, models.RoleUser, listResp.Turns[0].Role)
	assert.Equal(t, models.RoleAssistant, listResp.Turns[1].Role)

	w = postJSON(r, "/conversation/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conversation", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, 0, listResp.Count)
}

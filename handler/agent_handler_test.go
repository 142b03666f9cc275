package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/chatwidget/service"
	"github.com/tieubaoca/chatwidget/types"
)

type stubAI struct {
	err     error
	prompts []string
}

func (s *stubAI) Chat(ctx context.Context, messages []types.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	prompt := messages[len(messages)-1].Content
	s.prompts = append(s.prompts, prompt)
	return "reply to " + prompt, nil
}

func newTestAgentHandler(t *testing.T, ai service.AIService) (*AgentHandler, *service.AgentManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m, err := service.NewAgentManager(ai, "")
	require.NoError(t, err)
	return NewAgentHandler(m), m
}

func serve(handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, EndPointCompletions, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	handler(c)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var res types.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.Message
}

func TestHandleCompletions_Prompt(t *testing.T) {
	h, _ := newTestAgentHandler(t, &stubAI{})

	w := serve(h.HandleCompletions, `{"prompt":"2+2?"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reply to 2+2?", decodeMessage(t, w))
}

func TestHandleCompletions_DefaultPrompt(t *testing.T) {
	ai := &stubAI{}
	h, _ := newTestAgentHandler(t, ai)

	w := serve(h.HandleCompletions, `{}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"tell me something."}, ai.prompts)
}

func TestHandleCompletions_EmptyPromptKept(t *testing.T) {
	ai := &stubAI{}
	h, _ := newTestAgentHandler(t, ai)

	w := serve(h.HandleCompletions, `{"prompt":""}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{""}, ai.prompts)
}

func TestHandleCompletions_NamedAgent(t *testing.T) {
	h, m := newTestAgentHandler(t, &stubAI{})
	m.Create("math")

	w := serve(h.HandleCompletions, `{"agent_name":"math","prompt":"1+1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, m.Get("math").History(), 2)
	assert.Empty(t, m.Get(service.DefaultAgentName).History())
}

func TestHandleCompletions_BackendFailure(t *testing.T) {
	h, _ := newTestAgentHandler(t, &stubAI{err: errors.New("quota")})

	w := serve(h.HandleCompletions, `{"prompt":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "something went wrong", decodeMessage(t, w))
}

func TestHandleCompletions_InvalidBody(t *testing.T) {
	h, _ := newTestAgentHandler(t, &stubAI{})

	w := serve(h.HandleCompletions, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCreateAgent(t *testing.T) {
	h, m := newTestAgentHandler(t, &stubAI{})

	w := serve(h.HandleCreateAgent, `{"agent_name":"poet"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Agent poet created successfully.", decodeMessage(t, w))
	assert.Equal(t, "poet", m.Get("poet").Name())

	w = serve(h.HandleCreateAgent, `{"agent_name":""}`)
	assert.Equal(t, http.StatusOK, w.Code)
	msg := decodeMessage(t, w)
	assert.True(t, strings.HasPrefix(msg, "Agent "))
	assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(msg, "Agent "), " created successfully."), 32)
	assert.Equal(t, 2, m.Count())
}

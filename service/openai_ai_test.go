package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/chatwidget/types"
)

func TestOpenAIService_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4", body.Model)
		require.Len(t, body.Messages, 3)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "assistant", body.Messages[1].Role)
		assert.Equal(t, "user", body.Messages[2].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4",
			"choices":[{"index":0,"message":{"role":"assistant","content":"4"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	s := NewOpenAIService(srv.URL+"/v1", "sk-test", "gpt-4")
	reply, err := s.Chat(context.Background(), []types.Message{
		{Role: types.RoleSystem, Content: "sys"},
		{Role: types.RoleAssistant, Content: "earlier"},
		{Role: types.RoleUser, Content: "2+2?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "4", reply)
}

func TestOpenAIService_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIService(srv.URL, "k", "m").Chat(context.Background(), []types.Message{{Role: types.RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestOpenAIService_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIService(srv.URL, "k", "m").Chat(context.Background(), []types.Message{{Role: types.RoleUser, Content: "x"}})
	assert.Error(t, err)
}

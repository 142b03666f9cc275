package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tieubaoca/chatwidget/types"
)

// GeminiService answers through Gemini, rotating to the next API key when a
// request fails.
type GeminiService struct {
	apiKeys   []string
	modelName string

	dial        func(key string) (*genai.Client, error)
	closeClient func(*genai.Client) error

	mu      sync.Mutex
	current *geminiLease
}

// geminiLease tracks the callers using one client. A retired lease is closed
// once its last caller releases it.
type geminiLease struct {
	client  *genai.Client
	key     int
	refs    int
	retired bool
}

var errGeminiClosed = errors.New("gemini service is closed")

func NewGeminiService(apiKeys []string, modelName string) (*GeminiService, error) {
	return newGeminiService(apiKeys, modelName,
		func(key string) (*genai.Client, error) {
			return genai.NewClient(context.Background(), option.WithAPIKey(key))
		},
		func(c *genai.Client) error { return c.Close() },
	)
}

func newGeminiService(apiKeys []string, modelName string, dial func(string) (*genai.Client, error), closeClient func(*genai.Client) error) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	service := &GeminiService{
		apiKeys:     apiKeys,
		modelName:   modelName,
		dial:        dial,
		closeClient: closeClient,
	}

	client, err := dial(apiKeys[0])
	if err != nil {
		return nil, err
	}
	service.current = &geminiLease{client: client}
	return service, nil
}

// SplitAPIKeys parses a comma separated key list, dropping blanks.
func SplitAPIKeys(raw string) []string {
	keys := make([]string, 0)
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func (s *GeminiService) acquire() (*geminiLease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, errGeminiClosed
	}
	s.current.refs++
	return s.current, nil
}

func (s *GeminiService) release(l *geminiLease) {
	s.mu.Lock()
	l.refs--
	idle := l.retired && l.refs == 0
	s.mu.Unlock()

	if idle {
		s.closeLease(l)
	}
}

func (s *GeminiService) closeLease(l *geminiLease) {
	if err := s.closeClient(l.client); err != nil {
		log.WithError(err).Warn("gemini: closing previous client")
	}
}

// rotateFrom moves to the key after failed. It does nothing when another
// caller already rotated away from failed.
func (s *GeminiService) rotateFrom(failed *geminiLease) error {
	s.mu.Lock()
	if s.current != failed {
		s.mu.Unlock()
		return nil
	}

	key := (failed.key + 1) % len(s.apiKeys)
	client, err := s.dial(s.apiKeys[key])
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = &geminiLease{client: client, key: key}
	failed.retired = true
	idle := failed.refs == 0
	s.mu.Unlock()

	if idle {
		s.closeLease(failed)
	}
	return nil
}

// Close releases the active client. Calls still in flight keep it open until
// they return.
func (s *GeminiService) Close() error {
	s.mu.Lock()
	l := s.current
	s.current = nil
	if l == nil {
		s.mu.Unlock()
		return nil
	}
	l.retired = true
	idle := l.refs == 0
	s.mu.Unlock()

	if idle {
		return s.closeClient(l.client)
	}
	return nil
}

func (s *GeminiService) Chat(ctx context.Context, messages []types.Message) (string, error) {
	system, history, prompt, err := splitConversation(messages)
	if err != nil {
		return "", err
	}

	resp, used, err := s.send(ctx, system, history, prompt)
	if err != nil && used != nil && len(s.apiKeys) > 1 {
		log.WithError(err).Warn("gemini: request failed, rotating API key")
		if err := s.rotateFrom(used); err != nil {
			return "", err
		}
		resp, _, err = s.send(ctx, system, history, prompt)
	}
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", ErrNoResponse
	}

	var content strings.Builder
	if cand := resp.Candidates[0]; cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content.WriteString(string(text))
			}
		}
	}
	return content.String(), nil
}

// send runs one request on the current client and reports which lease it used.
func (s *GeminiService) send(ctx context.Context, system string, history []*genai.Content, prompt string) (*genai.GenerateContentResponse, *geminiLease, error) {
	lease, err := s.acquire()
	if err != nil {
		return nil, nil, err
	}
	defer s.release(lease)

	model := lease.client.GenerativeModel(s.modelName)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	chat := model.StartChat()
	chat.History = history
	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	return resp, lease, err
}

// splitConversation separates the system prompt, the prior turns in Gemini
// form, and the final user prompt.
func splitConversation(messages []types.Message) (string, []*genai.Content, string, error) {
	if len(messages) == 0 || messages[len(messages)-1].Role != types.RoleUser {
		return "", nil, "", errors.New("conversation must end with a user message")
	}

	var system []string
	history := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages[:len(messages)-1] {
		switch msg.Role {
		case types.RoleSystem:
			system = append(system, msg.Content)
		case types.RoleAssistant:
			history = append(history, &genai.Content{Parts: []genai.Part{genai.Text(msg.Content)}, Role: "model"})
		default:
			history = append(history, &genai.Content{Parts: []genai.Part{genai.Text(msg.Content)}, Role: "user"})
		}
	}
	return strings.Join(system, "\n"), history, messages[len(messages)-1].Content, nil
}

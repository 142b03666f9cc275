package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/apex/log"

	"github.com/tieubaoca/chatwidget/types"
)

// DefaultAgentName answers every prompt addressed to an unknown agent.
const DefaultAgentName = "default"

const randomNameLength = 32

// DefaultMaxHistory is the number of past turns an agent sends with each
// prompt unless configured otherwise.
const DefaultMaxHistory = 20

// Agent is a named conversation with its own history.
type Agent struct {
	name     string
	ai       AIService
	maxTurns int
	mu       sync.Mutex
	history  []types.Message
}

func newAgent(name, systemPrompt string, ai AIService, maxTurns int) *Agent {
	history := make([]types.Message, 0, 1)
	if systemPrompt != "" {
		history = append(history, types.Message{Role: types.RoleSystem, Content: systemPrompt})
	}
	return &Agent{name: name, ai: ai, maxTurns: maxTurns, history: history}
}

func (a *Agent) Name() string {
	return a.name
}

// Respond sends prompt with the agent's history. Prompts to one agent are
// answered one at a time; a failed turn is not recorded.
func (a *Agent) Respond(ctx context.Context, prompt string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	messages := make([]types.Message, len(a.history), len(a.history)+2)
	copy(messages, a.history)
	messages = append(messages, types.Message{Role: types.RoleUser, Content: prompt})

	reply, err := a.ai.Chat(ctx, messages)
	if err != nil {
		return "", err
	}

	a.history = trimHistory(append(messages, types.Message{Role: types.RoleAssistant, Content: reply}), a.maxTurns)
	return reply, nil
}

// trimHistory keeps the leading system messages and the last maxTurns
// user/assistant pairs. maxTurns <= 0 keeps everything.
func trimHistory(history []types.Message, maxTurns int) []types.Message {
	if maxTurns <= 0 {
		return history
	}
	sys := 0
	for sys < len(history) && history[sys].Role == types.RoleSystem {
		sys++
	}
	keep := maxTurns * 2
	if len(history)-sys <= keep {
		return history
	}

	trimmed := make([]types.Message, 0, sys+keep)
	trimmed = append(trimmed, history[:sys]...)
	return append(trimmed, history[len(history)-keep:]...)
}

func (a *Agent) History() []types.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.Message, len(a.history))
	copy(out, a.history)
	return out
}

type AgentManager struct {
	ai           AIService
	systemPrompt string
	maxTurns     int
	mu           sync.RWMutex
	agents       map[string]*Agent
	fallback     *Agent
}

type AgentManagerOption func(*AgentManager)

// WithMaxHistory caps how many past turns each agent keeps. Zero keeps all.
func WithMaxHistory(turns int) AgentManagerOption {
	return func(m *AgentManager) {
		m.maxTurns = turns
	}
}

func NewAgentManager(ai AIService, systemPrompt string, opts ...AgentManagerOption) (*AgentManager, error) {
	if ai == nil {
		return nil, errors.New("ai service is required")
	}
	m := &AgentManager{
		ai:           ai,
		systemPrompt: systemPrompt,
		maxTurns:     DefaultMaxHistory,
		agents:       make(map[string]*Agent),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.fallback = newAgent(DefaultAgentName, systemPrompt, ai, m.maxTurns)
	return m, nil
}

// Create registers an agent under name, replacing any agent already there.
// An empty name gets a random one. It returns the name used.
func (m *AgentManager) Create(name string) string {
	if name == "" {
		name = randomName()
	}

	m.mu.Lock()
	m.agents[name] = newAgent(name, m.systemPrompt, m.ai, m.maxTurns)
	m.mu.Unlock()

	log.WithField("agent", name).Info("agent created")
	return name
}

// Get returns the named agent, or the default agent when there is none.
func (m *AgentManager) Get(name string) *Agent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if agent, ok := m.agents[name]; ok {
		return agent
	}
	return m.fallback
}

func (m *AgentManager) Response(ctx context.Context, name, prompt string) (string, error) {
	return m.Get(name).Respond(ctx, prompt)
}

// Count returns the number of created agents, not counting the default.
func (m *AgentManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.agents)
}

func randomName() string {
	b := make([]byte, randomNameLength)
	for i := range b {
		b[i] = byte('a' + rand.Intn(26))
	}
	return string(b)
}

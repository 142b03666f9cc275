package types

// CompletionRequest is the body posted to the completions endpoint.
type CompletionRequest struct {
	AgentName string `json:"agent_name,omitempty"`
	Prompt    string `json:"prompt"`
}

// CompletionParams is CompletionRequest as seen by the server, where absent
// fields fall back to defaults.
type CompletionParams struct {
	AgentName *string `json:"agent_name"`
	Prompt    *string `json:"prompt"`
}

type CompletionResponse struct {
	Message string `json:"message"`
}

type CreateAgentRequest struct {
	AgentName string `json:"agent_name"`
}

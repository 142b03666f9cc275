package types

// MessageResponse is the body every agent endpoint replies with.
type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Agents  int    `json:"agents"`
}

package handler

import (
	"fmt"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/chatwidget/service"
	"github.com/tieubaoca/chatwidget/types"
)

const defaultPrompt = "tell me something."

type AgentHandler struct {
	agents *service.AgentManager
}

func NewAgentHandler(agents *service.AgentManager) *AgentHandler {
	return &AgentHandler{
		agents: agents,
	}
}

// HandleCreateAgent registers a named agent. An empty name gets a random one.
func (h *AgentHandler) HandleCreateAgent(c *gin.Context) {
	var req types.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.MessageResponse{
			Message: "Invalid request body",
		})
		return
	}

	name := h.agents.Create(req.AgentName)
	c.JSON(http.StatusOK, types.MessageResponse{
		Message: fmt.Sprintf("Agent %s created successfully.", name),
	})
}

// HandleCompletions answers a prompt with the named agent, or the default
// agent when the name is unknown.
func (h *AgentHandler) HandleCompletions(c *gin.Context) {
	var params types.CompletionParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, types.MessageResponse{
			Message: "Invalid request body",
		})
		return
	}

	name := service.DefaultAgentName
	if params.AgentName != nil {
		name = *params.AgentName
	}
	prompt := defaultPrompt
	if params.Prompt != nil {
		prompt = *params.Prompt
	}

	reply, err := h.agents.Response(c.Request.Context(), name, prompt)
	if err != nil {
		log.WithError(err).WithField("agent", name).Error("completion failed")
		c.JSON(http.StatusInternalServerError, types.MessageResponse{
			Message: "something went wrong",
		})
		return
	}

	c.JSON(http.StatusOK, types.MessageResponse{Message: reply})
}

func (h *AgentHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{
		Status:  "healthy",
		Service: "chatwidget",
		Agents:  h.agents.Count(),
	})
}

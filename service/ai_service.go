package service

import (
	"context"

	"github.com/tieubaoca/chatwidget/types"
)

// AIService produces the assistant reply for a conversation. messages starts
// with the system prompt and ends with the newest user message.
type AIService interface {
	Chat(ctx context.Context, messages []types.Message) (string, error)
}

package widget

// Sender tags a transcript entry with who produced it.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single transcript entry. It is never modified after it has
// been appended.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

func senderOf(isUser bool) Sender {
	if isUser {
		return SenderUser
	}
	return SenderBot
}

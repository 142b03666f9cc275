// Package widget implements the chat widget controller: it reads prompts from
// an input handle, renders user and bot bubbles into a transcript handle, and
// exchanges one request/response pair with the completions endpoint per turn.
//
// View handles are injected at construction and must tolerate calls from
// goroutines other than the one that created them; replies are rendered from
// the goroutine that waited on the network.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/apex/log"
)

// KeyEnter is the key name that submits the input.
const KeyEnter = "Enter"

var ErrMissingHandle = errors.New("missing view handle")

type Controller struct {
	ctx        context.Context
	handles    Handles
	client     CompletionClient
	transcript *Transcript
	logger     log.Interface

	// renderMu keeps the transcript and the view in the same order.
	renderMu sync.Mutex
}

type ControllerOption func(*Controller)

func WithLogger(logger log.Interface) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController wires the send trigger to SendMessage. ctx scopes every turn
// started from a key press or click; cancelling it abandons pending replies.
func NewController(ctx context.Context, handles Handles, client CompletionClient, opts ...ControllerOption) (*Controller, error) {
	switch {
	case handles.Transcript == nil:
		return nil, fmt.Errorf("%w: transcript", ErrMissingHandle)
	case handles.Input == nil:
		return nil, fmt.Errorf("%w: input", ErrMissingHandle)
	case handles.Send == nil:
		return nil, fmt.Errorf("%w: send trigger", ErrMissingHandle)
	case client == nil:
		return nil, errors.New("completion client is required")
	}

	c := &Controller{
		ctx:        ctx,
		handles:    handles,
		client:     client,
		transcript: NewTranscript(),
		logger:     log.Log,
	}
	for _, opt := range opts {
		opt(c)
	}

	handles.Send.Bind(func() {
		c.HandleClick()
	})
	return c, nil
}

func (c *Controller) Transcript() *Transcript {
	return c.transcript
}

// RenderMessage appends a bubble for text to the transcript.
func (c *Controller) RenderMessage(text string, isUser bool) {
	msg := Message{Text: text, Sender: senderOf(isUser)}

	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	c.transcript.Append(msg)
	c.handles.Transcript.AppendBubble(msg)
}

// SendMessage renders the current input as a user bubble and posts it. The
// returned Turn completes once the request has finished; on success the reply
// has been rendered and the input cleared. Failures leave the view untouched.
func (c *Controller) SendMessage(ctx context.Context) *Turn {
	prompt := c.handles.Input.Value()
	c.RenderMessage(prompt, true)

	turn := newTurn(prompt)
	go c.complete(ctx, turn)
	return turn
}

func (c *Controller) complete(ctx context.Context, turn *Turn) {
	defer close(turn.done)

	reply, err := c.client.Complete(ctx, turn.Prompt)
	if err != nil {
		turn.err = err
		c.logger.WithError(err).WithField("prompt", turn.Prompt).Debug("widget: completion failed")
		return
	}

	turn.reply = reply
	c.RenderMessage(reply, false)
	c.handles.Input.SetValue("")
}

// HandleKey sends on Enter and ignores every other key. It returns nil when
// nothing was sent.
func (c *Controller) HandleKey(key string) *Turn {
	if key != KeyEnter {
		return nil
	}
	return c.SendMessage(c.ctx)
}

func (c *Controller) HandleClick() *Turn {
	return c.SendMessage(c.ctx)
}

// Turn is one send and its eventual outcome.
type Turn struct {
	Prompt string

	done  chan struct{}
	reply string
	err   error
}

func newTurn(prompt string) *Turn {
	return &Turn{
		Prompt: prompt,
		done:   make(chan struct{}),
	}
}

func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the turn has finished and returns the reply or the
// reason nothing was rendered.
func (t *Turn) Wait() (string, error) {
	<-t.done
	return t.reply, t.err
}

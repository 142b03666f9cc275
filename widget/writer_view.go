package widget

import (
	"fmt"
	"io"
	"sync"
)

// WriterView renders bubbles as lines on an io.Writer and keeps the input
// value in memory. Its trigger fires only when Activate is called.
type WriterView struct {
	mu       sync.Mutex
	out      io.Writer
	value    string
	activate func()
}

func NewWriterView(out io.Writer) *WriterView {
	return &WriterView{out: out}
}

func (v *WriterView) Handles() Handles {
	return Handles{Transcript: v, Input: v, Send: v}
}

func (v *WriterView) AppendBubble(msg Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	label := "bot"
	if msg.IsUser() {
		label = "you"
	}
	fmt.Fprintf(v.out, "%s> %s\n", label, msg.Text)
}

func (v *WriterView) Value() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

func (v *WriterView) SetValue(value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = value
}

func (v *WriterView) Bind(onActivate func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.activate = onActivate
}

// Activate presses the send control.
func (v *WriterView) Activate() {
	v.mu.Lock()
	fn := v.activate
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}

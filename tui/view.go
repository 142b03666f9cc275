// Package tui renders the chat widget in a terminal. The transcript, the
// input field and the send button play the roles of the browser page's chat
// area, text input and button.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/tieubaoca/chatwidget/widget"
)

const sendLabel = "Send"

// View implements the widget handles on top of tview primitives. Every
// mutation is queued onto the application's event loop without waiting for
// it, since sends start from callbacks already running on that loop.
type View struct {
	app        *tview.Application
	queue      func(func())
	updates    *updateQueue
	transcript *tview.TextView
	input      *tview.InputField
	button     *tview.Button
	root       *tview.Flex

	onSend func()
	onKey  func(key string)
}

func NewView(app *tview.Application) *View {
	updates := newUpdateQueue(func(f func()) {
		app.QueueUpdateDraw(f)
	})
	v := newView(app, updates.push)
	v.updates = updates
	return v
}

func newView(app *tview.Application, queue func(func())) *View {
	v := &View{
		app:   app,
		queue: queue,
	}

	v.transcript = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true).
		SetScrollable(true)
	v.transcript.SetBorder(true).SetTitle(" Chat ")

	v.input = tview.NewInputField().
		SetLabel("> ").
		SetDoneFunc(v.handleDone)

	v.button = tview.NewButton(sendLabel).SetSelectedFunc(v.press)

	bottom := tview.NewFlex().
		AddItem(v.input, 0, 1, true).
		AddItem(v.button, len(sendLabel)+4, 0, false)

	v.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.transcript, 0, 1, false).
		AddItem(bottom, 1, 0, true)

	return v
}

func (v *View) Handles() widget.Handles {
	return widget.Handles{Transcript: v, Input: v, Send: v}
}

func (v *View) AppendBubble(msg widget.Message) {
	v.queue(func() {
		if msg.IsUser() {
			fmt.Fprintf(v.transcript, "[yellow::b]you:[-::-] %s\n", tview.Escape(msg.Text))
		} else {
			fmt.Fprintf(v.transcript, "[green::b]bot:[-::-] %s\n", tview.Escape(msg.Text))
		}
		v.transcript.ScrollToEnd()
	})
}

// Value is read on the event loop, from the Enter and button callbacks.
func (v *View) Value() string {
	return v.input.GetText()
}

func (v *View) SetValue(value string) {
	v.queue(func() {
		v.input.SetText(value)
	})
}

func (v *View) Bind(onActivate func()) {
	v.onSend = onActivate
}

// OnKey registers the handler for keys that finish editing the input.
func (v *View) OnKey(fn func(key string)) {
	v.onKey = fn
}

func (v *View) handleDone(key tcell.Key) {
	switch key {
	case tcell.KeyEnter:
		if v.onKey != nil {
			v.onKey(widget.KeyEnter)
		}
	case tcell.KeyEscape:
		v.app.Stop()
	}
}

func (v *View) press() {
	if v.onSend != nil {
		v.onSend()
	}
	v.app.SetFocus(v.input)
}

// Run blocks until the user quits with Escape or Stop is called.
func (v *View) Run() error {
	defer v.closeUpdates()
	return v.app.SetRoot(v.root, true).SetFocus(v.input).EnableMouse(true).Run()
}

func (v *View) Stop() {
	v.closeUpdates()
	v.app.Stop()
}

func (v *View) closeUpdates() {
	if v.updates != nil {
		v.updates.close()
	}
}

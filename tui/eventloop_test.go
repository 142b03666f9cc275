package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/chatwidget/widget"
)

// startLiveView runs a real tview application on a simulation screen, wired
// the way the chat command wires it.
func startLiveView(t *testing.T, client widget.CompletionClient) (*tview.Application, *View, chan *widget.Turn) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	app := tview.NewApplication().SetScreen(screen)
	v := NewView(app)

	c, err := widget.NewController(context.Background(), v.Handles(), client)
	require.NoError(t, err)
	turns := make(chan *widget.Turn, 4)
	v.OnKey(func(key string) {
		if turn := c.HandleKey(key); turn != nil {
			turns <- turn
		}
	})

	runErr := make(chan error, 1)
	go func() { runErr <- v.Run() }()
	t.Cleanup(func() {
		v.Stop()
		select {
		case <-runErr:
		case <-time.After(3 * time.Second):
			t.Error("application did not stop")
		}
	})
	return app, v, turns
}

// snapshot reads the transcript and input on the event loop. It returns
// empty strings when the loop does not answer in time.
func snapshot(app *tview.Application, v *View) (string, string) {
	result := make(chan [2]string, 1)
	go app.QueueUpdate(func() {
		result <- [2]string{v.transcript.GetText(true), v.input.GetText()}
	})
	select {
	case r := <-result:
		return r[0], r[1]
	case <-time.After(time.Second):
		return "", ""
	}
}

func pressEnter(app *tview.Application) {
	app.QueueEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
}

func TestView_LiveEventLoop_EnterThenButton(t *testing.T) {
	app, v, turns := startLiveView(t, replyFunc(func(ctx context.Context, prompt string) (string, error) {
		if prompt == "2+2?" {
			return "4", nil
		}
		return "ok", nil
	}))

	app.QueueUpdate(func() { v.input.SetText("2+2?") })
	pressEnter(app)

	var turn *widget.Turn
	select {
	case turn = <-turns:
	case <-time.After(3 * time.Second):
		t.Fatal("Enter on the event loop did not start a turn")
	}
	reply, err := turn.Wait()
	require.NoError(t, err)
	assert.Equal(t, "4", reply)

	require.Eventually(t, func() bool {
		text, value := snapshot(app, v)
		user := strings.Index(text, "you: 2+2?")
		bot := strings.Index(text, "bot: 4")
		return user >= 0 && bot > user && value == ""
	}, 3*time.Second, 20*time.Millisecond)

	app.QueueUpdate(func() {
		v.input.SetText("again")
		app.SetFocus(v.button)
	})
	pressEnter(app)

	require.Eventually(t, func() bool {
		text, value := snapshot(app, v)
		user := strings.Index(text, "you: again")
		bot := strings.Index(text, "bot: ok")
		return user >= 0 && bot > user && value == ""
	}, 3*time.Second, 20*time.Millisecond)

	var focusedInput bool
	app.QueueUpdate(func() { focusedInput = app.GetFocus() == v.input })
	assert.True(t, focusedInput)
}

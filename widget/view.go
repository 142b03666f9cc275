package widget

// TranscriptView is the visible container bubbles are appended to.
type TranscriptView interface {
	AppendBubble(msg Message)
}

// InputView is the text field the user types prompts into.
type InputView interface {
	Value() string
	SetValue(value string)
}

// Trigger is the send control. Bind is called once by NewController with the
// function to run each time the control is activated.
type Trigger interface {
	Bind(onActivate func())
}

// Handles groups the three view elements the controller needs.
type Handles struct {
	Transcript TranscriptView
	Input      InputView
	Send       Trigger
}

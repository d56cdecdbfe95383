package conversation

import "context"

// Keyboard selects one of the fixed reply keyboards the bot renders.
type Keyboard int

const (
	// KeyboardNone leaves the current keyboard untouched.
	KeyboardNone Keyboard = iota
	// KeyboardMainMenu shows the four-action main menu.
	KeyboardMainMenu
	// KeyboardHalls shows the hall picker.
	KeyboardHalls
	// KeyboardRemove hides whatever keyboard is currently shown.
	KeyboardRemove
)

// LinkButton describes a single inline button opening an external URL.
type LinkButton struct {
	Label string
	URL   string
}

// ReplyOptions carries the optional keyboard or link button for a text reply.
type ReplyOptions struct {
	Keyboard Keyboard
	Link     *LinkButton
}

// Messenger is the chat-transport capability consumed by the Router.
// SendText returns the transport message id so interim messages can be
// deleted later.
type Messenger interface {
	SendText(ctx context.Context, userID int64, text string, opts *ReplyOptions) (messageID int, err error)
	SendPhoto(ctx context.Context, userID int64, imageURL string) error
	DeleteMessage(ctx context.Context, userID int64, messageID int) error
}

// Assistant answers free-text questions and generates images.
type Assistant interface {
	Answer(ctx context.Context, question string) (string, error)
	GenerateImage(ctx context.Context, description string) (string, error)
}

// QuestionIntake forwards a speaker question to the conference backend.
type QuestionIntake interface {
	Submit(ctx context.Context, name, question, hall string) error
}

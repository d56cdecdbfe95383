// Package conversation implements the per-user conversation state machine
// and the router that drives it. It is transport-independent: all side
// effects go through the injected Messenger and service capabilities.
package conversation

// Mode identifies the active step of a user's multi-message conversation.
type Mode string

const (
	// ModeIdle indicates there is no active flow with the user.
	ModeIdle Mode = "idle"
	// ModeAwaitingAIQuestion waits for a free-text question to the AI helper.
	ModeAwaitingAIQuestion Mode = "awaiting_ai_question"
	// ModeAwaitingImagePrompt waits for a free-text image description.
	ModeAwaitingImagePrompt Mode = "awaiting_image_prompt"
	// ModeAwaitingHallSelection waits for the user to pick a conference hall.
	ModeAwaitingHallSelection Mode = "awaiting_hall_selection"
	// ModeAwaitingSpeakerQuestion waits for the question text for a speaker.
	ModeAwaitingSpeakerQuestion Mode = "awaiting_speaker_question"
)

// Conversation is the per-user state record. SelectedHall is meaningful
// only while Mode is ModeAwaitingSpeakerQuestion; every transition back to
// idle discards it.
type Conversation struct {
	Mode         Mode
	SelectedHall string
}

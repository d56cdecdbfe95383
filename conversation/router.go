package conversation

import (
	"context"
	"strings"

	"github.com/m3rciful/confbot/core/logger"
	"log/slog"
)

// Inbound is one text message delivered by the transport.
type Inbound struct {
	UserID     int64
	Text       string
	SenderName string
}

// Router decides what to do with an inbound message: interpret it as a
// top-level command, as free-text input for the active mode, or as an
// invalid selection. It owns all writes to the Store.
type Router struct {
	store     *Store
	messenger Messenger
	assistant Assistant
	questions QuestionIntake
	game      LinkButton
}

// NewRouter wires the router with its store and collaborators.
func NewRouter(store *Store, messenger Messenger, assistant Assistant, questions QuestionIntake, game LinkButton) *Router {
	return &Router{
		store:     store,
		messenger: messenger,
		assistant: assistant,
		questions: questions,
		game:      game,
	}
}

// Store exposes the conversation store, e.g. for transport-level dispatch
// decisions. Only the Router mutates it.
func (r *Router) Store() *Store {
	return r.store
}

type command int

const (
	cmdStart command = iota + 1
	cmdAskSpeaker
	cmdAskAssistant
	cmdGenerateImage
	cmdPlayGame
)

// commandFor matches slash commands and their menu-label equivalents.
func commandFor(text string) (command, bool) {
	if strings.HasPrefix(text, "/") {
		// tolerate the /command@botname form used in group chats
		if at := strings.IndexByte(text, '@'); at > 0 {
			text = text[:at]
		}
	}
	switch text {
	case "/start":
		return cmdStart, true
	case "/ask_speaker", LabelAskSpeaker:
		return cmdAskSpeaker, true
	case "/ask_ai", "/ask_helper", LabelAskAssistant:
		return cmdAskAssistant, true
	case "/generate_photo", "/generate_image", LabelGenerateImage:
		return cmdGenerateImage, true
	case LabelPlayGame:
		return cmdPlayGame, true
	}
	return 0, false
}

// Handle routes one inbound message. Service failures are consumed and
// reported to the user; the returned error covers messenger failures only.
func (r *Router) Handle(ctx context.Context, in Inbound) error {
	text := strings.TrimSpace(in.Text)

	// Top-level commands pre-empt whatever flow is in progress.
	if cmd, ok := commandFor(text); ok {
		prior := r.store.Get(in.UserID)
		r.store.Reset(in.UserID)
		logger.Debug(ctx, "conversation", "command",
			slog.String("status", "ok"),
			slog.Int64("user_id", in.UserID),
			slog.String("payload", logger.SanitizeLimit(text, 64)),
			slog.String("mode", string(prior.Mode)),
		)
		return r.runCommand(ctx, cmd, in)
	}

	conv := r.store.Get(in.UserID)
	switch conv.Mode {
	case ModeAwaitingHallSelection:
		return r.handleHallSelection(ctx, in, text)
	case ModeAwaitingSpeakerQuestion:
		return r.handleSpeakerQuestion(ctx, in, text, conv.SelectedHall)
	case ModeAwaitingAIQuestion:
		return r.handleAssistantQuestion(ctx, in, text)
	case ModeAwaitingImagePrompt:
		return r.handleImagePrompt(ctx, in, text)
	default:
		// Idle free text: nudge back to the menu, no state change.
		return r.sendText(ctx, in.UserID, textUseMenu, &ReplyOptions{Keyboard: KeyboardMainMenu})
	}
}

func (r *Router) runCommand(ctx context.Context, cmd command, in Inbound) error {
	switch cmd {
	case cmdStart:
		return r.sendText(ctx, in.UserID, textGreeting, &ReplyOptions{Keyboard: KeyboardMainMenu})

	case cmdAskSpeaker:
		if err := r.sendText(ctx, in.UserID, textChooseHall, &ReplyOptions{Keyboard: KeyboardHalls}); err != nil {
			return err
		}
		r.transition(ctx, in.UserID, ModeAwaitingHallSelection, "")
		return nil

	case cmdAskAssistant:
		if err := r.sendText(ctx, in.UserID, textAskAssistant, nil); err != nil {
			return err
		}
		r.transition(ctx, in.UserID, ModeAwaitingAIQuestion, "")
		return nil

	case cmdGenerateImage:
		if err := r.sendText(ctx, in.UserID, textAskImage, nil); err != nil {
			return err
		}
		r.transition(ctx, in.UserID, ModeAwaitingImagePrompt, "")
		return nil

	case cmdPlayGame:
		link := r.game
		return r.sendText(ctx, in.UserID, textPlayGame, &ReplyOptions{Link: &link})
	}
	return nil
}

func (r *Router) handleHallSelection(ctx context.Context, in Inbound, text string) error {
	if !validHall(text) {
		logger.Debug(ctx, "conversation", "hall.rejected",
			slog.String("status", "skip"),
			slog.Int64("user_id", in.UserID),
			slog.String("payload", logger.SanitizeLimit(text, 64)),
		)
		// No transition: the user may retry until a valid hall arrives.
		return r.sendText(ctx, in.UserID, textHallInvalid, nil)
	}

	r.transition(ctx, in.UserID, ModeAwaitingSpeakerQuestion, text)
	// Hide the hall picker while the user types the question.
	return r.sendText(ctx, in.UserID, "Вы выбрали "+text+textAskQuestion, &ReplyOptions{Keyboard: KeyboardRemove})
}

func (r *Router) handleSpeakerQuestion(ctx context.Context, in Inbound, text, hall string) error {
	if hall == "" {
		// Should be unreachable while the mode invariant holds; recover
		// by directing the user to restart the flow.
		logger.Warn(ctx, "conversation", "question.no_hall",
			slog.String("status", "skip"),
			slog.Int64("user_id", in.UserID),
		)
		return r.sendText(ctx, in.UserID, textHallMissing, nil)
	}

	name := strings.TrimSpace(in.SenderName)
	if name == "" {
		name = anonymousName
	}

	reply := textQuestionThanks
	if err := r.questions.Submit(ctx, name, text, hall); err != nil {
		reply = textQuestionFailed
	}
	r.store.Reset(in.UserID)

	if err := r.sendText(ctx, in.UserID, reply, nil); err != nil {
		return err
	}
	return r.sendText(ctx, in.UserID, textNextAction, &ReplyOptions{Keyboard: KeyboardMainMenu})
}

func (r *Router) handleAssistantQuestion(ctx context.Context, in Inbound, text string) error {
	reply := textAssistantError
	if answer, err := r.assistant.Answer(ctx, text); err == nil {
		reply = textAssistantReply + answer
	}
	r.store.Reset(in.UserID)

	if err := r.sendText(ctx, in.UserID, reply, nil); err != nil {
		return err
	}
	return r.sendText(ctx, in.UserID, textNextAction, &ReplyOptions{Keyboard: KeyboardMainMenu})
}

func (r *Router) handleImagePrompt(ctx context.Context, in Inbound, text string) error {
	waitID, err := r.messenger.SendText(ctx, in.UserID, textImageWait, nil)
	if err != nil {
		return err
	}

	url, genErr := r.assistant.GenerateImage(ctx, text)
	if genErr == nil {
		err = r.messenger.SendPhoto(ctx, in.UserID, url)
	} else {
		err = r.sendText(ctx, in.UserID, textImageError, nil)
	}

	// The interim message goes away whether generation worked or not.
	if delErr := r.messenger.DeleteMessage(ctx, in.UserID, waitID); delErr != nil {
		logger.Warn(ctx, "conversation", "image.wait_delete",
			slog.String("status", "fail"),
			slog.Int64("user_id", in.UserID),
			slog.String("err", logger.SanitizeLimit(delErr.Error(), 128)),
		)
	}
	r.store.Reset(in.UserID)

	if err != nil {
		return err
	}
	return r.sendText(ctx, in.UserID, textNextAction, &ReplyOptions{Keyboard: KeyboardMainMenu})
}

func (r *Router) transition(ctx context.Context, userID int64, mode Mode, hall string) {
	r.store.Update(userID, func(c *Conversation) {
		c.Mode = mode
		c.SelectedHall = hall
	})
	logger.Debug(ctx, "conversation", "transition",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("mode", string(mode)),
		slog.String("hall", hall),
	)
}

func (r *Router) sendText(ctx context.Context, userID int64, text string, opts *ReplyOptions) error {
	_, err := r.messenger.SendText(ctx, userID, text, opts)
	return err
}

func validHall(text string) bool {
	for _, h := range Halls {
		if text == h {
			return true
		}
	}
	return false
}

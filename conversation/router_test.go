package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type sentText struct {
	userID int64
	text   string
	opts   ReplyOptions
}

type fakeMessenger struct {
	texts   []sentText
	photos  []string
	deleted []int
	nextID  int
	sendErr error
}

func (m *fakeMessenger) SendText(_ context.Context, userID int64, text string, opts *ReplyOptions) (int, error) {
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.nextID++
	st := sentText{userID: userID, text: text}
	if opts != nil {
		st.opts = *opts
	}
	m.texts = append(m.texts, st)
	return m.nextID, nil
}

func (m *fakeMessenger) SendPhoto(_ context.Context, _ int64, url string) error {
	m.photos = append(m.photos, url)
	return nil
}

func (m *fakeMessenger) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *fakeMessenger) lastText(t *testing.T) sentText {
	t.Helper()
	if len(m.texts) == 0 {
		t.Fatal("no text messages sent")
	}
	return m.texts[len(m.texts)-1]
}

type fakeAssistant struct {
	answer      string
	answerErr   error
	imageURL    string
	imageErr    error
	answerCalls int
	imageCalls  int
	lastPrompt  string
}

func (a *fakeAssistant) Answer(_ context.Context, question string) (string, error) {
	a.answerCalls++
	a.lastPrompt = question
	return a.answer, a.answerErr
}

func (a *fakeAssistant) GenerateImage(_ context.Context, description string) (string, error) {
	a.imageCalls++
	a.lastPrompt = description
	return a.imageURL, a.imageErr
}

type submitted struct {
	name, question, hall string
}

type fakeIntake struct {
	calls []submitted
	err   error
}

func (q *fakeIntake) Submit(_ context.Context, name, question, hall string) error {
	q.calls = append(q.calls, submitted{name: name, question: question, hall: hall})
	return q.err
}

type fixture struct {
	router    *Router
	store     *Store
	messenger *fakeMessenger
	assistant *fakeAssistant
	intake    *fakeIntake
}

func newFixture() *fixture {
	f := &fixture{
		store:     NewStore(),
		messenger: &fakeMessenger{},
		assistant: &fakeAssistant{answer: "Четыре.", imageURL: "https://img.example.com/1.png"},
		intake:    &fakeIntake{},
	}
	f.router = NewRouter(f.store, f.messenger, f.assistant, f.intake,
		LinkButton{Label: "Играть в Skipper", URL: "https://game.example.com"})
	return f
}

func (f *fixture) handle(t *testing.T, userID int64, text string) {
	t.Helper()
	if err := f.router.Handle(context.Background(), Inbound{UserID: userID, Text: text, SenderName: "Иван Петров"}); err != nil {
		t.Fatalf("handle %q: %v", text, err)
	}
}

const user = int64(100500)

func TestStartShowsMainMenu(t *testing.T) {
	f := newFixture()
	f.handle(t, user, "/start")

	last := f.messenger.lastText(t)
	if last.text != textGreeting {
		t.Fatalf("text = %q", last.text)
	}
	if last.opts.Keyboard != KeyboardMainMenu {
		t.Fatalf("keyboard = %v, expected main menu", last.opts.Keyboard)
	}
	if mode := f.store.Get(user).Mode; mode != ModeIdle {
		t.Fatalf("mode = %q, expected idle", mode)
	}
}

func TestIdleFreeTextPromptsMenu(t *testing.T) {
	f := newFixture()
	f.handle(t, user, "привет")

	if got := f.messenger.lastText(t).text; got != textUseMenu {
		t.Fatalf("text = %q", got)
	}
	if mode := f.store.Get(user).Mode; mode != ModeIdle {
		t.Fatalf("mode = %q", mode)
	}
}

func TestCommandsPreemptEveryMode(t *testing.T) {
	modes := []struct {
		mode Mode
		hall string
	}{
		{ModeIdle, ""},
		{ModeAwaitingAIQuestion, ""},
		{ModeAwaitingImagePrompt, ""},
		{ModeAwaitingHallSelection, ""},
		{ModeAwaitingSpeakerQuestion, "Зал 2"},
	}
	commands := []struct {
		text string
		want Mode
	}{
		{"/start", ModeIdle},
		{"/ask_speaker", ModeAwaitingHallSelection},
		{LabelAskSpeaker, ModeAwaitingHallSelection},
		{"/ask_ai", ModeAwaitingAIQuestion},
		{"/ask_helper", ModeAwaitingAIQuestion},
		{LabelAskAssistant, ModeAwaitingAIQuestion},
		{"/generate_photo", ModeAwaitingImagePrompt},
		{"/generate_image", ModeAwaitingImagePrompt},
		{LabelGenerateImage, ModeAwaitingImagePrompt},
		{LabelPlayGame, ModeIdle},
	}

	for _, m := range modes {
		for _, cmd := range commands {
			t.Run(fmt.Sprintf("%s_from_%s", cmd.text, m.mode), func(t *testing.T) {
				f := newFixture()
				f.store.Update(user, func(c *Conversation) {
					c.Mode = m.mode
					c.SelectedHall = m.hall
				})

				f.handle(t, user, cmd.text)

				conv := f.store.Get(user)
				if conv.Mode != cmd.want {
					t.Fatalf("mode = %q, expected %q", conv.Mode, cmd.want)
				}
				if cmd.want != ModeAwaitingSpeakerQuestion && conv.SelectedHall != "" {
					t.Fatalf("hall = %q, expected cleared", conv.SelectedHall)
				}
				// Pre-emption never triggers downstream calls by itself.
				if f.assistant.answerCalls+f.assistant.imageCalls+len(f.intake.calls) != 0 {
					t.Fatal("command pre-emption must not call external services")
				}
			})
		}
	}
}

func TestCommandWithBotMentionSuffix(t *testing.T) {
	f := newFixture()
	f.handle(t, user, "/start@confbot")
	if got := f.messenger.lastText(t).text; got != textGreeting {
		t.Fatalf("text = %q", got)
	}
}

func TestHallSelectionValid(t *testing.T) {
	f := newFixture()
	f.handle(t, user, LabelAskSpeaker)
	if kb := f.messenger.lastText(t).opts.Keyboard; kb != KeyboardHalls {
		t.Fatalf("keyboard = %v, expected halls", kb)
	}

	f.handle(t, user, "Зал 2")

	conv := f.store.Get(user)
	if conv.Mode != ModeAwaitingSpeakerQuestion {
		t.Fatalf("mode = %q", conv.Mode)
	}
	if conv.SelectedHall != "Зал 2" {
		t.Fatalf("hall = %q", conv.SelectedHall)
	}
	confirmation := f.messenger.lastText(t)
	if !strings.Contains(confirmation.text, "Зал 2") {
		t.Fatalf("confirmation = %q", confirmation.text)
	}
	if confirmation.opts.Keyboard != KeyboardRemove {
		t.Fatalf("keyboard = %v, the hall picker must be hidden", confirmation.opts.Keyboard)
	}
}

func TestHallSelectionInvalidLoops(t *testing.T) {
	f := newFixture()
	f.handle(t, user, "/ask_speaker")

	for i := 0; i < 3; i++ {
		f.handle(t, user, "Зал 5")
		conv := f.store.Get(user)
		if conv.Mode != ModeAwaitingHallSelection {
			t.Fatalf("attempt %d: mode = %q", i, conv.Mode)
		}
		if conv.SelectedHall != "" {
			t.Fatalf("attempt %d: hall = %q", i, conv.SelectedHall)
		}
		if got := f.messenger.lastText(t).text; got != textHallInvalid {
			t.Fatalf("attempt %d: reply = %q", i, got)
		}
	}
	if len(f.intake.calls) != 0 {
		t.Fatal("invalid hall must not reach the intake service")
	}
}

func TestSpeakerQuestionSuccess(t *testing.T) {
	f := newFixture()
	f.handle(t, user, "/ask_speaker")
	f.handle(t, user, "Зал 2")
	f.handle(t, user, "Когда обед?")

	if len(f.intake.calls) != 1 {
		t.Fatalf("intake calls = %d", len(f.intake.calls))
	}
	call := f.intake.calls[0]
	if call.name != "Иван Петров" || call.question != "Когда обед?" || call.hall != "Зал 2" {
		t.Fatalf("intake payload = %+v", call)
	}

	conv := f.store.Get(user)
	if conv.Mode != ModeIdle || conv.SelectedHall != "" {
		t.Fatalf("conversation not reset: %+v", conv)
	}

	// Acknowledgment, then the menu re-prompt.
	n := len(f.messenger.texts)
	if f.messenger.texts[n-2].text != textQuestionThanks {
		t.Fatalf("ack = %q", f.messenger.texts[n-2].text)
	}
	menu := f.messenger.texts[n-1]
	if menu.text != textNextAction || menu.opts.Keyboard != KeyboardMainMenu {
		t.Fatalf("menu re-prompt = %+v", menu)
	}
}

func TestSpeakerQuestionFailure(t *testing.T) {
	f := newFixture()
	f.intake.err = errors.New("intake down")
	f.handle(t, user, "/ask_speaker")
	f.handle(t, user, "Зал 1")
	f.handle(t, user, "Когда обед?")

	n := len(f.messenger.texts)
	if f.messenger.texts[n-2].text != textQuestionFailed {
		t.Fatalf("error reply = %q", f.messenger.texts[n-2].text)
	}
	conv := f.store.Get(user)
	if conv.Mode != ModeIdle || conv.SelectedHall != "" {
		t.Fatalf("failure must still reset the conversation: %+v", conv)
	}
}

func TestSpeakerQuestionAnonymousName(t *testing.T) {
	f := newFixture()
	f.handle(t, user, "/ask_speaker")
	f.handle(t, user, "Зал 3")
	if err := f.router.Handle(context.Background(), Inbound{UserID: user, Text: "Вопрос"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if f.intake.calls[0].name != anonymousName {
		t.Fatalf("name = %q", f.intake.calls[0].name)
	}
}

func TestSpeakerQuestionWithoutHall(t *testing.T) {
	f := newFixture()
	// Force the defensive branch: question mode with no hall recorded.
	f.store.Update(user, func(c *Conversation) { c.Mode = ModeAwaitingSpeakerQuestion })

	f.handle(t, user, "Когда обед?")

	if got := f.messenger.lastText(t).text; got != textHallMissing {
		t.Fatalf("reply = %q", got)
	}
	if len(f.intake.calls) != 0 {
		t.Fatal("no intake call expected")
	}
	if mode := f.store.Get(user).Mode; mode != ModeAwaitingSpeakerQuestion {
		t.Fatalf("mode = %q, expected unchanged", mode)
	}
}

func TestAssistantQuestionSuccess(t *testing.T) {
	f := newFixture()
	f.handle(t, user, LabelAskAssistant)
	f.handle(t, user, "Сколько будет 2+2?")

	if f.assistant.answerCalls != 1 {
		t.Fatalf("answer calls = %d", f.assistant.answerCalls)
	}
	if f.assistant.lastPrompt != "Сколько будет 2+2?" {
		t.Fatalf("prompt = %q", f.assistant.lastPrompt)
	}
	n := len(f.messenger.texts)
	if got := f.messenger.texts[n-2].text; got != textAssistantReply+"Четыре." {
		t.Fatalf("reply = %q", got)
	}
	if mode := f.store.Get(user).Mode; mode != ModeIdle {
		t.Fatalf("mode = %q", mode)
	}
}

func TestAssistantQuestionMalformedResponse(t *testing.T) {
	f := newFixture()
	f.assistant.answerErr = errors.New("chat completion response has no choices")
	f.handle(t, user, "/ask_ai")
	f.handle(t, user, "Сколько будет 2+2?")

	n := len(f.messenger.texts)
	if got := f.messenger.texts[n-2].text; got != textAssistantError {
		t.Fatalf("reply = %q", got)
	}
	if mode := f.store.Get(user).Mode; mode != ModeIdle {
		t.Fatalf("mode = %q", mode)
	}
}

func TestRepeatedFailuresProduceIndependentReplies(t *testing.T) {
	f := newFixture()
	f.assistant.answerErr = errors.New("down")

	for i := 0; i < 2; i++ {
		f.handle(t, user, "/ask_ai")
		f.handle(t, user, "Вопрос")
	}

	if f.assistant.answerCalls != 2 {
		t.Fatalf("answer calls = %d, expected 2", f.assistant.answerCalls)
	}
	errorReplies := 0
	for _, m := range f.messenger.texts {
		if m.text == textAssistantError {
			errorReplies++
		}
	}
	if errorReplies != 2 {
		t.Fatalf("error replies = %d, expected 2", errorReplies)
	}
}

func TestImageGenerationSuccess(t *testing.T) {
	f := newFixture()
	f.handle(t, user, LabelGenerateImage)
	f.handle(t, user, "кот на сцене")

	if f.assistant.imageCalls != 1 {
		t.Fatalf("image calls = %d", f.assistant.imageCalls)
	}
	if len(f.messenger.photos) != 1 || f.messenger.photos[0] != "https://img.example.com/1.png" {
		t.Fatalf("photos = %v", f.messenger.photos)
	}

	// The interim message was sent and then deleted.
	var waitID int
	for _, m := range f.messenger.texts {
		if m.text == textImageWait {
			waitID++
		}
	}
	if waitID != 1 {
		t.Fatalf("interim messages = %d", waitID)
	}
	if len(f.messenger.deleted) != 1 {
		t.Fatalf("deleted = %v", f.messenger.deleted)
	}
	if mode := f.store.Get(user).Mode; mode != ModeIdle {
		t.Fatalf("mode = %q", mode)
	}
}

func TestImageGenerationFailureDeletesInterim(t *testing.T) {
	f := newFixture()
	f.assistant.imageErr = errors.New("image service down")
	f.handle(t, user, "/generate_photo")
	f.handle(t, user, "кот")

	if len(f.messenger.photos) != 0 {
		t.Fatalf("photos = %v", f.messenger.photos)
	}
	if len(f.messenger.deleted) != 1 {
		t.Fatalf("deleted = %v, interim message must be removed on failure", f.messenger.deleted)
	}
	found := false
	for _, m := range f.messenger.texts {
		if m.text == textImageError {
			found = true
		}
	}
	if !found {
		t.Fatal("expected image error reply")
	}
	if mode := f.store.Get(user).Mode; mode != ModeIdle {
		t.Fatalf("mode = %q", mode)
	}
}

func TestPlayGameSendsLink(t *testing.T) {
	f := newFixture()
	f.handle(t, user, "/ask_speaker")
	f.handle(t, user, LabelPlayGame)

	last := f.messenger.lastText(t)
	if last.text != textPlayGame {
		t.Fatalf("text = %q", last.text)
	}
	if last.opts.Link == nil || last.opts.Link.URL != "https://game.example.com" {
		t.Fatalf("link = %+v", last.opts.Link)
	}
	// Game is a top-level command: it pre-empted the hall flow to idle.
	if mode := f.store.Get(user).Mode; mode != ModeIdle {
		t.Fatalf("mode = %q", mode)
	}
}

func TestUsersAreIndependent(t *testing.T) {
	f := newFixture()
	other := int64(200)

	f.handle(t, user, "/ask_speaker")
	f.handle(t, other, "/ask_ai")

	if mode := f.store.Get(user).Mode; mode != ModeAwaitingHallSelection {
		t.Fatalf("user mode = %q", mode)
	}
	if mode := f.store.Get(other).Mode; mode != ModeAwaitingAIQuestion {
		t.Fatalf("other mode = %q", mode)
	}
}

func TestScenarioSpeakerQuestionWalkthrough(t *testing.T) {
	f := newFixture()

	f.handle(t, user, LabelAskSpeaker)
	if mode := f.store.Get(user).Mode; mode != ModeAwaitingHallSelection {
		t.Fatalf("mode = %q", mode)
	}

	f.handle(t, user, "Зал 5")
	if got := f.messenger.lastText(t).text; got != textHallInvalid {
		t.Fatalf("reply = %q", got)
	}
	if mode := f.store.Get(user).Mode; mode != ModeAwaitingHallSelection {
		t.Fatalf("mode = %q, expected unchanged", mode)
	}

	f.handle(t, user, "Зал 2")
	conv := f.store.Get(user)
	if conv.SelectedHall != "Зал 2" || conv.Mode != ModeAwaitingSpeakerQuestion {
		t.Fatalf("conversation = %+v", conv)
	}

	f.handle(t, user, "When is lunch?")
	if len(f.intake.calls) != 1 {
		t.Fatalf("intake calls = %d", len(f.intake.calls))
	}
	if call := f.intake.calls[0]; call.question != "When is lunch?" || call.hall != "Зал 2" {
		t.Fatalf("intake payload = %+v", call)
	}
	if mode := f.store.Get(user).Mode; mode != ModeIdle {
		t.Fatalf("mode = %q", mode)
	}
}

package app

import (
	"context"
	"strconv"

	"github.com/m3rciful/confbot/conversation"
	"github.com/m3rciful/confbot/core/telegram/keyboard"
	"github.com/m3rciful/confbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// messenger implements conversation.Messenger on top of telebot.
// Text and photo sends are synchronous so the router's reply ordering
// holds; message deletion is fire-and-forget through the dispatcher.
type messenger struct {
	bot        *tele.Bot
	dispatcher *sender.Dispatcher
}

func newMessenger(bot *tele.Bot, dispatcher *sender.Dispatcher) *messenger {
	return &messenger{bot: bot, dispatcher: dispatcher}
}

func (m *messenger) SendText(_ context.Context, userID int64, text string, opts *conversation.ReplyOptions) (int, error) {
	var sendOpts []interface{}
	if markup := renderMarkup(opts); markup != nil {
		sendOpts = append(sendOpts, markup)
	}

	msg, err := m.bot.Send(tele.ChatID(userID), text, sendOpts...)
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (m *messenger) SendPhoto(_ context.Context, userID int64, imageURL string) error {
	photo := &tele.Photo{File: tele.FromURL(imageURL)}
	_, err := m.bot.Send(tele.ChatID(userID), photo)
	return err
}

func (m *messenger) DeleteMessage(ctx context.Context, userID int64, messageID int) error {
	stored := tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    userID,
	}
	run := func() error { return m.bot.Delete(stored) }

	if m.dispatcher == nil {
		return run()
	}
	if err := m.dispatcher.Enqueue(ctx, "delete.message", "deleteMessage", run); err != nil {
		// Saturated or closing queue: do it inline rather than leaving
		// the interim message behind.
		return run()
	}
	return nil
}

func renderMarkup(opts *conversation.ReplyOptions) *tele.ReplyMarkup {
	if opts == nil {
		return nil
	}
	if opts.Link != nil {
		return keyboard.URLButton(opts.Link.Label, opts.Link.URL)
	}
	switch opts.Keyboard {
	case conversation.KeyboardMainMenu:
		return keyboard.ReplyButtons(
			[]string{conversation.LabelAskSpeaker},
			[]string{conversation.LabelAskAssistant},
			[]string{conversation.LabelGenerateImage},
			[]string{conversation.LabelPlayGame},
		)
	case conversation.KeyboardRemove:
		return keyboard.RemoveKeyboard()
	case conversation.KeyboardHalls:
		rows := make([][]string, 0, (len(conversation.Halls)+1)/2)
		for i := 0; i < len(conversation.Halls); i += 2 {
			end := i + 2
			if end > len(conversation.Halls) {
				end = len(conversation.Halls)
			}
			rows = append(rows, conversation.Halls[i:end])
		}
		return keyboard.ReplyButtons(rows...)
	}
	return nil
}

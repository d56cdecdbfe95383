// Package app assembles the conference bot: it binds the conversation
// router to the Telegram transport and to the assistant and
// question-intake services.
package app

import (
	"context"
	"fmt"

	"github.com/m3rciful/confbot/conversation"
	coreconfig "github.com/m3rciful/confbot/core/config"
	tg "github.com/m3rciful/confbot/core/telegram"
	"github.com/m3rciful/confbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/confbot/core/telegram/helpers"
	"github.com/m3rciful/confbot/services/assistant"
	"github.com/m3rciful/confbot/services/questions"

	tele "gopkg.in/telebot.v4"
)

// App owns the long-lived pieces of the bot. Conversation state survives
// transport restarts because the store lives here, not in the session.
type App struct {
	cfg       *coreconfig.Config
	store     *conversation.Store
	assistant *assistant.Client
	questions *questions.Client
}

// New builds the application from validated configuration.
func New(cfg *coreconfig.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}
	return &App{
		cfg:       cfg,
		store:     conversation.NewStore(),
		assistant: assistant.New(cfg.Assistant),
		questions: questions.New(cfg.Conference),
	}, nil
}

// CoreConfig exposes the underlying configuration.
func (a *App) CoreConfig() *coreconfig.Config {
	return a.cfg
}

// TelegramRunOptions wires the bot runtime: middleware chain, command
// registry and the text funnel feeding the conversation router.
// Registration happens inside Routes so that every supervised session
// gets handlers bound to its own bot; only the store outlives a session.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	return tg.RunOptions{
		Config:      a.cfg,
		Middlewares: tg.DefaultMiddlewares(a.cfg, nil),
		Routes: func(rt tg.Runtime) []tg.Route {
			router := conversation.NewRouter(
				a.store,
				newMessenger(rt.Bot, rt.Dispatcher),
				a.assistant,
				intakeAdapter{client: a.questions},
				conversation.LinkButton{Label: a.cfg.Game.ButtonLabel, URL: a.cfg.Game.URL},
			)
			dispatch := a.dispatch(router)

			a.registerCommands(rt.Registry, dispatch)
			// Free-text updates (hall picks, questions, prompts) go through
			// the same funnel; the runtime binds this to tele.OnText.
			rt.Registry.SetTextFallback(dispatch)
			return nil
		},
	}, nil
}

func (a *App) registerCommands(reg *tg.Registry, dispatch tele.HandlerFunc) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     dispatch,
		Description: "Начать работу с ботом",
	})
	reg.RegisterCommand("/ask_speaker", commands.Command{
		Handler:     dispatch,
		Description: "Задать вопрос спикеру",
	})
	reg.RegisterCommand("/ask_ai", commands.Command{
		Handler:     dispatch,
		Description: "Задать вопрос помощнику (ИИ)",
		Aliases:     []string{"ask_helper"},
	})
	reg.RegisterCommand("/generate_photo", commands.Command{
		Handler:     dispatch,
		Description: "Сгенерировать изображение по описанию",
		Aliases:     []string{"generate_image"},
	})
}

// dispatch adapts a Telegram update into a conversation inbound message.
// Every command and every free-text update goes through the same funnel;
// the router decides what the text means for the user's current mode.
func (a *App) dispatch(router *conversation.Router) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		in := conversation.Inbound{
			UserID:     sender.ID,
			Text:       c.Text(),
			SenderName: tghelpers.SenderName(c),
		}
		return handleWithSummary(c, handlerName(in.Text), func() error {
			ctx := tghelpers.BuildContext(c)
			return router.Handle(ctx, in)
		})
	}
}

// intakeAdapter narrows the questions client to the router's interface.
type intakeAdapter struct {
	client *questions.Client
}

func (i intakeAdapter) Submit(ctx context.Context, name, question, hall string) error {
	return i.client.Submit(ctx, questions.Question{
		Name:     name,
		Question: question,
		Hall:     hall,
	})
}

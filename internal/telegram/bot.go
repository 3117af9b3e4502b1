// Package telegram connects the relay to Telegram as an MTProto bot.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ghrelay/ghrelay/internal/relay"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"
)

// Handler processes one inbound message.
type Handler interface {
	Handle(ctx context.Context, in *relay.Inbound) error
}

type Config struct {
	AppID       int
	AppHash     string
	BotToken    string
	SessionPath string
}

// Bot receives messages and hands each one to the Handler on its own goroutine.
type Bot struct {
	cfg     Config
	handler Handler
	wg      sync.WaitGroup
	log     *slog.Logger
}

func New(cfg Config, handler Handler) *Bot {
	return &Bot{
		cfg:     cfg,
		handler: handler,
		log:     slog.Default().With("component", "telegram"),
	}
}

// Run logs in with the bot token and serves updates until ctx is cancelled.
// It returns only after every in-flight handler has finished.
func (b *Bot) Run(ctx context.Context) error {
	dispatcher := tg.NewUpdateDispatcher()
	client := telegram.NewClient(b.cfg.AppID, b.cfg.AppHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: b.cfg.SessionPath},
		UpdateHandler:  dispatcher,
	})

	api := client.API()
	sender := message.NewSender(api)

	dispatcher.OnNewMessage(func(_ context.Context, entities tg.Entities, u *tg.UpdateNewMessage) error {
		msg, ok := u.Message.(*tg.Message)
		if !ok || msg.Out {
			return nil
		}

		in := &relay.Inbound{
			RequesterID: requesterID(msg),
			Text:        msg.Message,
			Document:    documentOf(api, msg),
			Responder:   newResponder(sender, entities, u, msg.ID),
		}
		b.dispatch(ctx, in)
		return nil
	})

	defer b.wg.Wait()

	return client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}
		if !status.Authorized {
			if _, err := client.Auth().Bot(ctx, b.cfg.BotToken); err != nil {
				return fmt.Errorf("bot login: %w", err)
			}
		}

		self, err := client.Self(ctx)
		if err != nil {
			return fmt.Errorf("get self: %w", err)
		}
		b.log.Info("bot started", "username", self.Username, "id", self.ID)

		<-ctx.Done()
		return ctx.Err()
	})
}

// dispatch runs the handler off the update loop so a long transfer never blocks other chats.
func (b *Bot) dispatch(ctx context.Context, in *relay.Inbound) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		if err := b.handler.Handle(ctx, in); err != nil {
			b.log.Warn("message handling failed", "requester", in.RequesterID, "error", err)
		}
	}()
}

// requesterID is the sending user, or the private chat's user when FromID is omitted.
func requesterID(msg *tg.Message) int64 {
	if from, ok := msg.GetFromID(); ok {
		if user, ok := from.(*tg.PeerUser); ok {
			return user.UserID
		}
	}
	switch peer := msg.PeerID.(type) {
	case *tg.PeerUser:
		return peer.UserID
	case *tg.PeerChat:
		return peer.ChatID
	case *tg.PeerChannel:
		return peer.ChannelID
	}
	return 0
}

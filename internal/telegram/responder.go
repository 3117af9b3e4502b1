package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/ghrelay/ghrelay/internal/relay"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

var errNoMessageID = errors.New("telegram: sent message id not found in updates")

// responder answers in the chat the inbound message came from, replying to it.
type responder struct {
	builder *message.Builder
}

func newResponder(sender *message.Sender, entities tg.Entities, u *tg.UpdateNewMessage, msgID int) *responder {
	return &responder{builder: sender.Answer(entities, u).Reply(msgID)}
}

func (r *responder) Reply(ctx context.Context, text string) error {
	_, err := r.builder.StyledText(ctx, styledText(text)...)
	return err
}

func (r *responder) ReplyStatus(ctx context.Context, text string) (relay.StatusMessage, error) {
	upd, err := r.builder.StyledText(ctx, styledText(text)...)
	if err != nil {
		return nil, err
	}

	id, err := sentMessageID(upd)
	if err != nil {
		return nil, err
	}
	return &statusMessage{builder: r.builder, id: id}, nil
}

// statusMessage is a sent message edited in place.
type statusMessage struct {
	builder *message.Builder
	id      int
}

func (s *statusMessage) Edit(ctx context.Context, text string) error {
	_, err := s.builder.Edit(s.id).StyledText(ctx, styledText(text)...)
	if tgerr.Is(err, "MESSAGE_NOT_MODIFIED") {
		return nil
	}
	if err != nil {
		return fmt.Errorf("edit message %d: %w", s.id, err)
	}
	return nil
}

// sentMessageID digs the new message's ID out of a send result.
func sentMessageID(upd tg.UpdatesClass) (int, error) {
	switch u := upd.(type) {
	case *tg.UpdateShortSentMessage:
		return u.ID, nil
	case *tg.Updates:
		return idFromUpdates(u.Updates)
	case *tg.UpdatesCombined:
		return idFromUpdates(u.Updates)
	}
	return 0, errNoMessageID
}

func idFromUpdates(updates []tg.UpdateClass) (int, error) {
	for _, upd := range updates {
		switch u := upd.(type) {
		case *tg.UpdateMessageID:
			return u.ID, nil
		case *tg.UpdateNewMessage:
			if m, ok := u.Message.(*tg.Message); ok {
				return m.ID, nil
			}
		case *tg.UpdateNewChannelMessage:
			if m, ok := u.Message.(*tg.Message); ok {
				return m.ID, nil
			}
		}
	}
	return 0, errNoMessageID
}

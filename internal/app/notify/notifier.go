// Package notify implements the door-sensor notification side channel:
// when the alarm is armed, every opted-in user is told about each new
// door state over Telegram.
package notify

import (
	"context"
	"strconv"
	"sync"

	propertystore "github.com/shelterhub/shelterhub/internal/app/store/properties"
	userstore "github.com/shelterhub/shelterhub/internal/app/store/users"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.uber.org/zap"
)

// Notifier fans door events out to Telegram recipients.
type Notifier struct {
	props  *propertystore.Store
	users  *userstore.Store
	sender Sender
	log    *zap.Logger
}

// New creates a Notifier. sender may be nil when no bot token is
// configured; the notifier then degrades to a no-op.
func New(props *propertystore.Store, users *userstore.Store, sender Sender, logger *zap.Logger) *Notifier {
	return &Notifier{props: props, users: users, sender: sender, log: logger}
}

// DoorStateChanged reports a new door state to every opted-in user,
// provided the alarm-enabled property is set. Delivery is concurrent
// and independent per recipient, with no ordering guarantee and no
// retry: an individual failure is logged and does not block the rest.
func (n *Notifier) DoorStateChanged(ctx context.Context, log models.DoorLog) {
	if n.sender == nil {
		return
	}

	armed, err := n.props.Bool(ctx, models.PropAlarmEnabled)
	if err != nil {
		n.log.Error("alarm property read failed", zap.Error(err))
		return
	}
	if !armed {
		return
	}

	recipients, err := n.users.ListTelegramRecipients(ctx)
	if err != nil {
		n.log.Error("notification recipient query failed", zap.Error(err))
		return
	}

	text := "Door is " + log.State

	var wg sync.WaitGroup
	for _, u := range recipients {
		chatID, err := strconv.ParseInt(u.TelegramID, 10, 64)
		if err != nil {
			n.log.Warn("user has malformed telegramId",
				zap.String("user_id", u.ID.Hex()),
				zap.String("telegram_id", u.TelegramID))
			continue
		}
		wg.Add(1)
		go func(chatID int64, userID string) {
			defer wg.Done()
			if err := n.sender.SendMessage(chatID, text); err != nil {
				n.log.Warn("door notification delivery failed",
					zap.String("user_id", userID),
					zap.Int64("chat_id", chatID),
					zap.Error(err))
			}
		}(chatID, u.ID.Hex())
	}
	wg.Wait()
}

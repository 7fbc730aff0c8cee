// Package bot serves the Telegram webhook that arms and disarms the
// door alarm.
package bot

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shelterhub/shelterhub/internal/app/notify"
	propertystore "github.com/shelterhub/shelterhub/internal/app/store/properties"
	userstore "github.com/shelterhub/shelterhub/internal/app/store/users"
	"github.com/shelterhub/shelterhub/internal/app/system/timeouts"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler processes Telegram webhook updates.
type Handler struct {
	Users  *userstore.Store
	Props  *propertystore.Store
	Sender notify.Sender
	Token  string
	Log    *zap.Logger
}

// NewHandler constructs a bot Handler. Token is the bot token the
// webhook path must carry.
func NewHandler(users *userstore.Store, props *propertystore.Store, sender notify.Sender, token string, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Props: props, Sender: sender, Token: token, Log: logger}
}

// HandleUpdate handles POST /v1/bot{botToken}.
//
// Telegram retries deliveries that do not come back 200, so every
// processed update answers 200 regardless of the command outcome; only
// a wrong token in the path is rejected.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "botToken")
	if h.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.Token)) != 1 {
		http.NotFound(w, r)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.Log.Warn("malformed telegram update", zap.Error(err))
		w.WriteHeader(http.StatusOK)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	h.dispatch(ctx, update.Message)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	telegramID := strconv.FormatInt(msg.From.ID, 10)

	user, err := h.Users.GetByTelegramID(ctx, telegramID)
	if err == mongo.ErrNoDocuments {
		h.reply(chatID, "Sorry, you are not authorized")
		return
	}
	if err != nil {
		h.Log.Error("bot user lookup failed", zap.String("telegram_id", telegramID), zap.Error(err))
		return
	}

	switch command(msg.Text) {
	case "/start":
		if err := h.Sender.SendKeyboard(chatID, "Hello, "+user.FullName()+"!", []string{"/on", "/off"}); err != nil {
			h.Log.Warn("bot greeting failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	case "/on":
		h.setAlarm(ctx, chatID, true)
	case "/off":
		h.setAlarm(ctx, chatID, false)
	default:
		h.reply(chatID, "Unknown command. Use /on or /off.")
	}
}

func (h *Handler) setAlarm(ctx context.Context, chatID int64, enabled bool) {
	value := strconv.FormatBool(enabled)
	if _, err := h.Props.Set(ctx, models.PropAlarmEnabled, value); err != nil {
		h.Log.Error("alarm property update failed", zap.Error(err))
		h.reply(chatID, "Something went wrong, try again later")
		return
	}
	if enabled {
		h.reply(chatID, "Alarm is on")
	} else {
		h.reply(chatID, "Alarm is off")
	}
}

func (h *Handler) reply(chatID int64, text string) {
	if h.Sender == nil {
		return
	}
	if err := h.Sender.SendMessage(chatID, text); err != nil {
		h.Log.Warn("bot reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// command extracts the leading slash command, dropping the bot-name
// suffix Telegram appends in group chats.
func command(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	if i := strings.IndexAny(text, " @"); i > 0 {
		text = text[:i]
	}
	return text
}

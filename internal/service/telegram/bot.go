package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"RegimeWatch/internal/domain/models"
	drepo "RegimeWatch/internal/domain/repository"
	pkghttp "RegimeWatch/pkg/http"
	applogger "RegimeWatch/pkg/logger"
)

const (
	callbackToggleAlert  = "TOGGLE_ALERT_"
	callbackToggleRegime = "TOGGLE_REGIME_"
)

// Bot serves the subscriber configuration surface over Telegram long
// polling: /start, /status, /alerts and /regimes commands plus inline
// keyboard toggles. It shares the stores with the HTTP surface and the
// worker; there is no coordination beyond the store's own locking.
type Bot struct {
	apiBase     string
	token       string
	pollTimeout time.Duration
	subs        drepo.SubscriberStore
	snaps       drepo.SnapshotStore
	client      *pkghttp.Client
	l           *applogger.Logger
}

func NewBot(apiBase, token string, pollTimeout time.Duration, subs drepo.SubscriberStore, snaps drepo.SnapshotStore, l *applogger.Logger) *Bot {
	return &Bot{
		apiBase:     apiBase,
		token:       token,
		pollTimeout: pollTimeout,
		subs:        subs,
		snaps:       snaps,
		client:      pkghttp.NewClient(pkghttp.WithTimeout(pollTimeout + 10*time.Second)),
		l:           l,
	}
}

// --- Bot API wire types (only the fields we read) ---

type tgUpdate struct {
	UpdateID      int64            `json:"update_id"`
	Message       *tgMessage       `json:"message"`
	CallbackQuery *tgCallbackQuery `json:"callback_query"`
}

type tgMessage struct {
	MessageID int64  `json:"message_id"`
	Chat      tgChat `json:"chat"`
	Text      string `json:"text"`
}

type tgChat struct {
	ID int64 `json:"id"`
}

type tgCallbackQuery struct {
	ID      string     `json:"id"`
	Data    string     `json:"data"`
	Message *tgMessage `json:"message"`
}

type tgUpdatesResp struct {
	OK          bool       `json:"ok"`
	Description string     `json:"description"`
	Result      []tgUpdate `json:"result"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Run long-polls getUpdates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.l.Info("telegram bot started")
	var offset int64
	for {
		select {
		case <-ctx.Done():
			b.l.Info("telegram bot stopped")
			return
		default:
		}

		updates, err := b.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			b.l.Error("telegram getUpdates failed", applogger.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(3 * time.Second):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			b.handleUpdate(ctx, u)
		}
	}
}

func (b *Bot) getUpdates(ctx context.Context, offset int64) ([]tgUpdate, error) {
	var resp tgUpdatesResp
	err := b.apiCall(ctx, "getUpdates", map[string]interface{}{
		"offset":          offset,
		"timeout":         int(b.pollTimeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("getUpdates: %s", resp.Description)
	}
	return resp.Result, nil
}

func (b *Bot) handleUpdate(ctx context.Context, u tgUpdate) {
	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		b.handleCommand(ctx, u.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, m *tgMessage) {
	chatID := strconv.FormatInt(m.Chat.ID, 10)
	cmd := m.Text
	if i := strings.IndexAny(cmd, " @"); i >= 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start":
		b.reply(ctx, m.Chat.ID,
			"Welcome.\n\n"+
				"/alerts  - event alerts\n"+
				"/regimes - regime entry alerts\n"+
				"/status  - current market regime",
			nil)
	case "/alerts":
		sub, err := b.subs.GetOrCreate(ctx, chatID)
		if err != nil {
			b.l.Error("telegram load subscriber failed", applogger.Error(err))
			return
		}
		b.reply(ctx, m.Chat.ID, "Toggle alert notifications:", alertKeyboard(sub))
	case "/regimes":
		sub, err := b.subs.GetOrCreate(ctx, chatID)
		if err != nil {
			b.l.Error("telegram load subscriber failed", applogger.Error(err))
			return
		}
		b.reply(ctx, m.Chat.ID, "Notify me when market enters:", regimeKeyboard(sub))
	case "/status":
		b.reply(ctx, m.Chat.ID, b.statusText(ctx), nil)
	}
}

func (b *Bot) statusText(ctx context.Context) string {
	snap, err := b.snaps.Read(ctx)
	if err != nil {
		return "Failed to fetch current regime."
	}
	if snap.Regime == nil {
		return fmt.Sprintf("Symbol: %s\nNo classification yet.", snap.Symbol)
	}
	conf := 0.0
	if snap.Confidence != nil {
		conf = *snap.Confidence
	}
	var ts int64
	if snap.Timestamp != nil {
		ts = *snap.Timestamp
	}
	return fmt.Sprintf(
		"Symbol: %s\nRegime: %s\nConfidence: %.2f\nTimestamp: %d",
		snap.Symbol, snap.Regime.Display(), conf, ts,
	)
}

func (b *Bot) handleCallback(ctx context.Context, q *tgCallbackQuery) {
	if q.Message == nil {
		b.answer(ctx, q.ID, "", false)
		return
	}
	chatID := strconv.FormatInt(q.Message.Chat.ID, 10)

	switch {
	case strings.HasPrefix(q.Data, callbackToggleAlert):
		kind, ok := models.ParseAlertKind(strings.TrimPrefix(q.Data, callbackToggleAlert))
		if !ok {
			b.answer(ctx, q.ID, "Unknown alert", true)
			return
		}
		sub, err := b.subs.ToggleAlert(ctx, chatID, kind)
		if err != nil {
			b.l.Error("telegram toggle alert failed", applogger.Error(err))
			b.answer(ctx, q.ID, "Try again later", true)
			return
		}
		b.editKeyboard(ctx, q.Message, alertKeyboard(sub))
		b.answer(ctx, q.ID, "", false)

	case strings.HasPrefix(q.Data, callbackToggleRegime):
		regime, ok := models.ParseRegime(strings.TrimPrefix(q.Data, callbackToggleRegime))
		if !ok {
			b.answer(ctx, q.ID, "Unknown regime", true)
			return
		}
		sub, err := b.subs.ToggleRegime(ctx, chatID, regime)
		if err != nil {
			b.l.Error("telegram toggle regime failed", applogger.Error(err))
			b.answer(ctx, q.ID, "Try again later", true)
			return
		}
		b.editKeyboard(ctx, q.Message, regimeKeyboard(sub))
		b.answer(ctx, q.ID, "", false)

	default:
		b.answer(ctx, q.ID, "", false)
	}
}

func alertKeyboard(sub models.Subscriber) *inlineKeyboard {
	rows := make([][]inlineButton, 0, len(models.AllAlertKinds()))
	for _, k := range models.AllAlertKinds() {
		status := "OFF"
		if sub.WantsAlert(k) {
			status = "ON"
		}
		rows = append(rows, []inlineButton{{
			Text:         fmt.Sprintf("%s: %s", k.Display(), status),
			CallbackData: callbackToggleAlert + string(k),
		}})
	}
	return &inlineKeyboard{InlineKeyboard: rows}
}

func regimeKeyboard(sub models.Subscriber) *inlineKeyboard {
	rows := make([][]inlineButton, 0, len(models.AllRegimes()))
	for _, r := range models.AllRegimes() {
		status := "OFF"
		if sub.WantsRegime(r) {
			status = "ON"
		}
		rows = append(rows, []inlineButton{{
			Text:         fmt.Sprintf("%s: %s", r.Display(), status),
			CallbackData: callbackToggleRegime + string(r),
		}})
	}
	return &inlineKeyboard{InlineKeyboard: rows}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string, kb *inlineKeyboard) {
	body := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if kb != nil {
		body["reply_markup"] = kb
	}
	if err := b.apiCall(ctx, "sendMessage", body, nil); err != nil {
		b.l.Error("telegram reply failed", applogger.Error(err))
	}
}

func (b *Bot) editKeyboard(ctx context.Context, m *tgMessage, kb *inlineKeyboard) {
	err := b.apiCall(ctx, "editMessageReplyMarkup", map[string]interface{}{
		"chat_id":      m.Chat.ID,
		"message_id":   m.MessageID,
		"reply_markup": kb,
	}, nil)
	if err != nil {
		b.l.Error("telegram edit keyboard failed", applogger.Error(err))
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string, alert bool) {
	body := map[string]interface{}{"callback_query_id": callbackID}
	if text != "" {
		body["text"] = text
		body["show_alert"] = alert
	}
	if err := b.apiCall(ctx, "answerCallbackQuery", body, nil); err != nil {
		b.l.Error("telegram answer callback failed", applogger.Error(err))
	}
}

func (b *Bot) apiCall(ctx context.Context, method string, body map[string]interface{}, dest interface{}) error {
	opts := &pkghttp.RequestOptions{
		Method: pkghttp.MethodPost,
		URL:    fmt.Sprintf("%s/bot%s/%s", b.apiBase, b.token, method),
		Body:   body,
	}
	return b.client.SendAndParse(ctx, opts, dest)
}

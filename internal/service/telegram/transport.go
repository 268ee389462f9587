package telegram

import (
	"context"
	"fmt"
	"time"

	"RegimeWatch/internal/domain/models"
	domsvc "RegimeWatch/internal/domain/service"
	"RegimeWatch/internal/service/ratelimit"
	pkghttp "RegimeWatch/pkg/http"
)

const (
	// Telegram allows roughly one message per second per chat.
	perChatBurst     = 3.0
	perChatRefillSec = 1.0
	sendWaitTimeout  = 5 * time.Second
)

// Transport delivers messages via the Telegram Bot API sendMessage call.
// Sends are paced per chat with a token bucket and never retried; a failed
// send is the caller's problem to log and move past.
type Transport struct {
	apiBase string
	token   string
	client  *pkghttp.Client
	limiter *ratelimit.Limiter
}

func NewTransport(apiBase, token string, timeout time.Duration) *Transport {
	return &Transport{
		apiBase: apiBase,
		token:   token,
		client:  pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		limiter: ratelimit.New(),
	}
}

type sendMessageResp struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts one message to the chat identified by subscriberID.
func (t *Transport) Send(ctx context.Context, subscriberID, text string) error {
	if !t.limiter.Wait(subscriberID, perChatBurst, perChatRefillSec, sendWaitTimeout) {
		return fmt.Errorf("%w: chat %s rate limited", models.ErrDeliveryFailure, subscriberID)
	}

	var resp sendMessageResp
	opts := &pkghttp.RequestOptions{
		Method: pkghttp.MethodPost,
		URL:    fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token),
		Body: map[string]interface{}{
			"chat_id": subscriberID,
			"text":    text,
		},
	}
	if err := t.client.SendAndParse(ctx, opts, &resp); err != nil {
		return fmt.Errorf("%w: sendMessage chat %s: %v", models.ErrDeliveryFailure, subscriberID, err)
	}
	if !resp.OK {
		return fmt.Errorf("%w: sendMessage chat %s: %s", models.ErrDeliveryFailure, subscriberID, resp.Description)
	}
	return nil
}

var _ domsvc.Transport = (*Transport)(nil)

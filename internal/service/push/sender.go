package push

import (
	"context"
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/empezz5-crypto/mdmoney/internal/model"
)

// Sender delivers one encrypted payload to one push endpoint and reports the
// push service's HTTP status. A transport-level failure returns err with a
// zero status.
type Sender interface {
	Send(ctx context.Context, sub model.PushSubscription, payload []byte) (int, error)
}

type webpushSender struct {
	options webpush.Options
}

// NewWebPushSender builds the VAPID-configured web push transport. It is
// constructed once at startup; missing keys are an error here, not a lazy
// failure inside the fan-out path.
func NewWebPushSender(publicKey, privateKey, subject string) (Sender, error) {
	if publicKey == "" || privateKey == "" {
		return nil, fmt.Errorf("VAPID keys are missing")
	}
	if subject == "" {
		subject = "mailto:admin@example.com"
	}
	return &webpushSender{
		options: webpush.Options{
			Subscriber:      subject,
			VAPIDPublicKey:  publicKey,
			VAPIDPrivateKey: privateKey,
			TTL:             60 * 60 * 24,
		},
	}, nil
}

func (s *webpushSender) Send(ctx context.Context, sub model.PushSubscription, payload []byte) (int, error) {
	opts := s.options
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &opts)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

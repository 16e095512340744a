package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/directory"
)

// KindOTP carries a one-time login code to a citizen's phone.
const KindOTP = "otp"

// Message is an outbound SMS.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers messages to a gateway.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier stands in for the SMS gateway. Destinations are masked and
// bodies, which may hold a login code, are only written at debug level.
type LoggerNotifier struct {
	logger *zap.Logger
}

func NewLoggerNotifier(logger *zap.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("sms queued",
		zap.String("kind", message.Kind),
		zap.String("to", directory.MaskPhone(message.Destination)),
	)
	n.logger.Debug("sms body", zap.String("kind", message.Kind), zap.String("body", message.Body))
	return nil
}

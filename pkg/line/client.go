package line

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"EstateLink/config"
	"EstateLink/pkg/logger"
)

// Delivery preconditions the adapter enforces before any network I/O.
var (
	ErrMissingChannelToken = errors.New("LINE channel token is not configured")
	ErrEmptyRecipient      = errors.New("recipient user ID is empty")
	ErrEmptyMessage        = errors.New("message text is empty")
	ErrTooManyRecipients   = errors.New("multicast accepts at most 500 recipients")
)

// PushResult carries the raw gateway outcome for bookkeeping.
type PushResult struct {
	StatusCode int    `json:"status_code"`
	RequestID  string `json:"request_id,omitempty"`
	Body       string `json:"body,omitempty"`
}

// Client is the Messaging Gateway contract.
// Push delivers one text message to one LINE user ID.
// Multicast delivers the same text to up to 500 user IDs; it is used by the
// campaign surface of the CRM, not by the reminder dispatcher.
type Client interface {
	Push(ctx context.Context, to, text string) (*PushResult, error)
	Multicast(ctx context.Context, to []string, text string) (*PushResult, error)
}

var (
	lineClient Client
	lineOnce   sync.Once
	lineErr    error
)

// Init wires the configured provider.
func Init() error {
	lineOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.LineProvider {
		case "line":
			lineClient = NewHTTPClient(cfg.LineAPIBase, cfg.LineChannelToken)
		case "mock":
			lineClient = NewMockClient()
		default:
			lineErr = fmt.Errorf("unsupported LINE provider: %s", cfg.LineProvider)
		}

		if lineErr != nil {
			logger.Logger.Error("Failed to initialize LINE client", zap.Error(lineErr))
			return
		}

		logger.Logger.Info("LINE client initialized successfully",
			zap.String("provider", cfg.LineProvider),
		)
	})

	return lineErr
}

func GetClient() Client {
	if lineClient == nil {
		panic("LINE client not initialized, call line.Init() first")
	}
	return lineClient
}

func Push(ctx context.Context, to, text string) (*PushResult, error) {
	return GetClient().Push(ctx, to, text)
}

func Multicast(ctx context.Context, to []string, text string) (*PushResult, error) {
	return GetClient().Multicast(ctx, to, text)
}

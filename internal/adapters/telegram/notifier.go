package telegram

import (
	"context"
	"fmt"

	"futuresBot/internal/domain"
	"futuresBot/internal/ports"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Config holds Telegram bot settings.
type Config struct {
	Enabled  bool
	BotToken string
	ChatID   int64
	// APIEndpoint overrides the Bot API URL template; empty uses tgbotapi.APIEndpoint.
	APIEndpoint string
	Logger      ports.Logger
}

// Notifier sends trade and error alerts to a Telegram chat. A disabled
// notifier silently drops every message.
type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
	logger  ports.Logger
}

// NewNotifier connects to the Bot API when enabled. Connection failures
// downgrade to a disabled notifier rather than stopping the bot.
func NewNotifier(cfg Config) *Notifier {
	if !cfg.Enabled || cfg.Logger == nil {
		return &Notifier{enabled: false, logger: cfg.Logger}
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.BotToken, endpoint)
	if err != nil {
		cfg.Logger.Error(context.Background(), err, "Failed to create telegram bot")
		return &Notifier{enabled: false, logger: cfg.Logger}
	}

	cfg.Logger.Info(context.Background(), "Telegram bot connected", map[string]interface{}{"username": bot.Self.UserName})
	return &Notifier{
		bot:     bot,
		chatID:  cfg.ChatID,
		enabled: true,
		logger:  cfg.Logger,
	}
}

// Enabled reports whether messages are delivered.
func (n *Notifier) Enabled() bool {
	return n.enabled
}

func (n *Notifier) NotifyTrade(ctx context.Context, trade *domain.Trade, order *ports.OrderResponse) {
	if trade == nil {
		return
	}
	icon := "🟢"
	if trade.Decision == domain.SignalSell {
		icon = "🔴"
	}
	msg := fmt.Sprintf("%s *%s* %s\nStrategy: %s\nPrice: %.4f\nQty: %g",
		icon, trade.Decision, trade.Symbol, trade.Strategy, trade.Price, trade.Quantity)
	if order != nil {
		msg += fmt.Sprintf("\nOrder: %d (%s)", order.OrderID, order.Status)
	}
	n.send(ctx, msg)
}

func (n *Notifier) NotifyError(ctx context.Context, operation string, err error) {
	n.send(ctx, fmt.Sprintf("⚠️ *Error* [%s]\n%v", operation, err))
}

func (n *Notifier) NotifyStatus(ctx context.Context, message string) {
	n.send(ctx, message)
}

func (n *Notifier) send(ctx context.Context, text string) {
	if !n.enabled {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error(ctx, err, "Failed to send telegram message")
	}
}

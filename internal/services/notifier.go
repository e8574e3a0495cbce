package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Payment outcomes reported to the notification channel.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
)

// PaymentOutcome carries the data of a finished payment attempt.
type PaymentOutcome struct {
	OrderID          string
	Outcome          string
	AmountMinorUnits int64
	Currency         string
	Reason           string
}

// Notifier is the outbound notification trigger. Delivery is fire-and-forget:
// failures are logged by the dispatching service and never rolled back against
// the transaction state.
type Notifier interface {
	NotifyPaymentOutcome(outcome PaymentOutcome) error
}

// TelegramNotifier posts payment outcomes to the admin chat via the Bot API.
// Transport failures are returned to the caller, not logged here.
type TelegramNotifier struct {
	botToken    string
	adminChatID string
	log         *slog.Logger
}

func NewTelegramNotifier(botToken, adminChatID string, log *slog.Logger) *TelegramNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &TelegramNotifier{
		botToken:    botToken,
		adminChatID: adminChatID,
		log:         log,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to the specified chat.
func (s *TelegramNotifier) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		s.log.Debug("telegram bot token not configured, skipping message")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramNotifier) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		s.log.Debug("telegram admin chat not configured, skipping message")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// FormatMinorUnits renders an amount in minor units as a major-unit price with
// thousand separators, e.g. 15000000 UZS tiyin -> "150,000 UZS".
func FormatMinorUnits(amount int64, currency string) string {
	if currency == "" {
		currency = "UZS"
	}
	str := fmt.Sprintf("%d", amount/100)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + " " + currency
}

// NotifyPaymentOutcome sends the payment outcome to the admin chat.
func (s *TelegramNotifier) NotifyPaymentOutcome(outcome PaymentOutcome) error {
	if s.adminChatID == "" {
		return nil
	}

	header := "<b>✅ TO'LOV QABUL QILINDI!</b>"
	if outcome.Outcome == OutcomeCancelled {
		header = "<b>❌ TO'LOV BEKOR QILINDI!</b>"
	}

	message := fmt.Sprintf(`%s
<b>📋 Buyurtma:</b> %s
<b>💰 Summa:</b> %s
━━━━━━━━━━━━━━━━━━`,
		header,
		outcome.OrderID,
		FormatMinorUnits(outcome.AmountMinorUnits, outcome.Currency),
	)

	if outcome.Outcome == OutcomeCancelled && outcome.Reason != "" {
		message += fmt.Sprintf("\n<b>📍 Sabab:</b> %s", outcome.Reason)
	}

	return s.SendToAdmin(strings.TrimSpace(message))
}

package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/example/oda/internal/models"
)

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
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
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// NotifyBusinessUnderReview alerts admins that a business submitted its
// first verification document and is awaiting review.
func (s *TelegramService) NotifyBusinessUnderReview(profile *models.BusinessProfile) {
	text := fmt.Sprintf(
		"<b>Business awaiting review</b>\n%s (%s)\nTIN: %s",
		profile.BusinessName, profile.BusinessType, profile.TINNumber,
	)
	if err := s.SendToAdmin(text); err != nil {
		log.Printf("[Telegram] review notification failed: %v", err)
	}
}

// NotifyBusinessDecision alerts admins about a verification decision.
func (s *TelegramService) NotifyBusinessDecision(profile *models.BusinessProfile, status models.VerificationStatus) {
	text := fmt.Sprintf(
		"<b>Business verification updated</b>\n%s is now %s",
		profile.BusinessName, status,
	)
	if err := s.SendToAdmin(text); err != nil {
		log.Printf("[Telegram] decision notification failed: %v", err)
	}
}

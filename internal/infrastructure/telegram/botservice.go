package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appnotif "nomadly/internal/application/notification"
	"nomadly/internal/shared/config"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
)

const (
	requestTimeout  = 15 * time.Second
	maxResponseSize = 64 << 10
)

// BotService is the Telegram chat channel. Owner ids double as chat ids:
// users register with the bot before placing orders.
type BotService struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Interface
}

var _ appnotif.ChatSender = (*BotService)(nil)

func NewBotService(cfg *config.TelegramConfig, logger logger.Interface) *BotService {
	apiBase := strings.TrimRight(cfg.APIBase, "/")
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	return &BotService{
		baseURL:    fmt.Sprintf("%s/bot%s", apiBase, cfg.BotToken),
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

func (s *BotService) SendChatMessage(ctx context.Context, ownerID int64, text string) error {
	body := map[string]any{
		"chat_id": ownerID,
		"text":    text,
	}
	return s.makeRequest(ctx, fmt.Sprintf("%s/sendMessage", s.baseURL), body)
}

func (s *BotService) makeRequest(ctx context.Context, url string, body map[string]any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode telegram request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.NewExternalError("telegram unreachable", err.Error())
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&result); err != nil {
		return apperrors.NewExternalError("invalid telegram response", err.Error())
	}
	if !result.OK {
		return apperrors.NewExternalError("telegram API error", result.Description)
	}
	return nil
}

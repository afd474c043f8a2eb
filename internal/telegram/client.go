package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxMsgLen      = 4000
	maxSendRetries = 3
	fileFetchLimit = 20 << 20 // Bot API caps downloads at 20MB
)

// Client wraps the Telegram Bot API for the two capabilities the pipeline
// needs: sending plain-text messages and fetching file bytes by reference.
type Client struct {
	bot    *tgbotapi.BotAPI
	http   *http.Client
	logger *slog.Logger
}

func NewClient(token string, logger *slog.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	logger.Info("telegram bot connected",
		"username", bot.Self.UserName,
		"id", bot.Self.ID,
	)
	return &Client{
		bot:    bot,
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}, nil
}

// SendMessage delivers text to a chat as plain text, chunked to the Bot API
// message length limit.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitMessage(text) {
		if err := c.sendChunk(ctx, chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

// splitMessage cuts text into chunks of at most maxMsgLen bytes, preferring
// to break at a newline in the second half of the chunk.
func splitMessage(text string) []string {
	var chunks []string
	for len(text) > 0 {
		chunk := text
		if len(chunk) > maxMsgLen {
			cutAt := strings.LastIndex(chunk[:maxMsgLen], "\n")
			if cutAt < maxMsgLen/2 {
				cutAt = maxMsgLen
			}
			chunk = text[:cutAt]
			text = text[cutAt:]
		} else {
			text = ""
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// sendChunk sends a single message chunk with retry and rate limit handling.
func (c *Client) sendChunk(ctx context.Context, chatID int64, text string) error {
	var lastErr error
	for attempt := 0; attempt <= maxSendRetries; attempt++ {
		// No parse mode: the agent's output contract is plain text only.
		msg := tgbotapi.NewMessage(chatID, text)

		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err

		backoff := time.Duration(attempt+1) * time.Second
		if errStr := err.Error(); strings.Contains(errStr, "Too Many Requests") || strings.Contains(errStr, "429") {
			backoff = time.Duration(attempt+1) * 3 * time.Second
			c.logger.Warn("telegram rate limited, backing off",
				"retry_after", backoff, "attempt", attempt+1,
			)
		} else {
			c.logger.Warn("telegram send error, retrying", "err", err, "backoff", backoff)
		}

		if attempt == maxSendRetries {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("telegram send failed after %d attempts: %w", maxSendRetries+1, lastErr)
}

// GetFile resolves a file reference to its raw bytes via getFile and a
// download from the file endpoint.
func (c *Client) GetFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := c.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("telegram getFile %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("file download request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("file download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, fileFetchLimit))
	if err != nil {
		return nil, fmt.Errorf("file download read: %w", err)
	}

	c.logger.Debug("file fetched", "file_id", fileID, "bytes", len(data))
	return data, nil
}

// Package telegram holds a minimal Bot API client and the webhook update
// handler built on it.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Client calls the Telegram Bot API for one bot token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client against the public Bot API.
func NewClient(token string) *Client {
	return NewClientWithBaseURL(token, defaultAPIBase)
}

// NewClientWithBaseURL points the client at a custom API host, used in tests.
func NewClientWithBaseURL(token, baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage sends a plain text reply.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{ChatID: chatID, Text: text})
}

// SendMessageWithKeyboard sends a reply with an inline keyboard attached.
func (c *Client) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, kb InlineKeyboardMarkup) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{ChatID: chatID, Text: text, ReplyMarkup: &kb})
}

type editMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
}

// EditMessageText replaces the text of a previously sent message, used to
// acknowledge keyboard selections in place.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	return c.call(ctx, "editMessageText", editMessageRequest{ChatID: chatID, MessageID: messageID, Text: text})
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
}

// AnswerCallbackQuery stops the client-side loading spinner on a button.
func (c *Client) AnswerCallbackQuery(ctx context.Context, id string) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: id})
}

// SendVoice uploads synthesized audio as a voice note. Telegram expects
// OGG/Opus and a multipart upload rather than the JSON envelope.
func (c *Client) SendVoice(ctx context.Context, chatID int64, audio []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("writing chat_id field: %w", err)
	}
	part, err := w.CreateFormFile("voice", "reply.ogg")
	if err != nil {
		return fmt.Errorf("creating voice part: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return fmt.Errorf("writing voice data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendVoice", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("creating sendVoice request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling sendVoice: %w", err)
	}
	defer resp.Body.Close()
	return parseResponse("sendVoice", resp.Body)
}

type setWebhookRequest struct {
	URL string `json:"url"`
}

// SetWebhook registers the public webhook URL with Telegram.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	return c.call(ctx, "setWebhook", setWebhookRequest{URL: url})
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, in any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()
	return parseResponse(method, resp.Body)
}

func parseResponse(method string, body io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", method, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("%s failed: %s", method, parsed.Description)
	}
	return nil
}

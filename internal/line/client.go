// Package line wraps the LINE Messaging API SDK behind small interfaces so
// the dispatcher never sees SDK types or SDK error values.
package line

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// ErrInvalidSignature reports that a webhook request failed HMAC signature
// verification against the channel secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Parser verifies and parses an inbound webhook request into events.
type Parser interface {
	// Parse returns the events carried by the request in arrival order.
	// A signature failure returns ErrInvalidSignature.
	Parse(r *http.Request) ([]Event, error)
}

// Messenger performs outbound platform calls.
type Messenger interface {
	// Reply sends one text message for the given reply token. The token is
	// single-use; a second call with the same token fails.
	Reply(ctx context.Context, replyToken, text string) error

	// DownloadContent streams the media content of a message. The caller
	// must close the returned reader.
	DownloadContent(ctx context.Context, messageID string) (io.ReadCloser, error)
}

// Client implements Parser and Messenger over the LINE bot SDK.
type Client struct {
	sdk *linebot.Client
	log *slog.Logger
}

// NewClient creates a LINE client from the channel secret and access token.
func NewClient(channelSecret, channelToken string, log *slog.Logger) (*Client, error) {
	if channelSecret == "" || channelToken == "" {
		return nil, fmt.Errorf("LINE channel secret and token are required")
	}
	if log == nil {
		log = slog.Default()
	}

	sdk, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE client: %w", err)
	}

	return &Client{
		sdk: sdk,
		log: log.With("component", "line_client"),
	}, nil
}

// Parse verifies the request signature and converts SDK events into the
// bot's event variants. Non-message events and message types the bot has no
// policy for (audio, location, stickers, ...) are dropped with a debug log.
func (c *Client) Parse(r *http.Request) ([]Event, error) {
	sdkEvents, err := c.sdk.ParseRequest(r)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("failed to parse webhook request: %w", err)
	}

	events := make([]Event, 0, len(sdkEvents))
	for _, ev := range sdkEvents {
		if ev.Type != linebot.EventTypeMessage {
			c.log.Debug("Ignoring non-message event", "event_type", ev.Type)
			continue
		}

		switch msg := ev.Message.(type) {
		case *linebot.TextMessage:
			events = append(events, Event{
				Kind:       EventText,
				ReplyToken: ev.ReplyToken,
				Text:       msg.Text,
			})
		case *linebot.ImageMessage:
			events = append(events, Event{
				Kind:       EventImage,
				ReplyToken: ev.ReplyToken,
				MessageID:  msg.ID,
			})
		default:
			c.log.Debug("Ignoring unsupported message type", "message_type", fmt.Sprintf("%T", msg))
		}
	}

	return events, nil
}

// Reply sends one text message through the reply API. Errors are returned
// for the dispatcher to log; an expired or reused token is not retriable.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	_, err := c.sdk.ReplyMessage(replyToken, linebot.NewTextMessage(text)).WithContext(ctx).Do()
	if err != nil {
		var apiErr *linebot.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("reply API returned status %d: %w", apiErr.Code, err)
		}
		return fmt.Errorf("reply API call failed: %w", err)
	}
	return nil
}

// DownloadContent fetches the media bytes for a message ID.
func (c *Client) DownloadContent(ctx context.Context, messageID string) (io.ReadCloser, error) {
	resp, err := c.sdk.GetMessageContent(messageID).WithContext(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message content %s: %w", messageID, err)
	}
	return resp.Content, nil
}

// Package discordapi reads channel history through the Discord REST API and converts it
// into live.Message values.
package discordapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"

	"github.com/onnwee/livecheck/live"
	"github.com/onnwee/livecheck/telemetry"
)

// APIError is a non-2xx answer from the Discord API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord api failed %d %s: %s", e.Status, http.StatusText(e.Status), strings.TrimSpace(e.Body))
}

// Client lists messages of one channel.
type Client struct {
	ChannelID string
	session   *discordgo.Session
}

// NewClient builds a REST-only session authenticated as a bot. base is the underlying HTTP
// client (nil means http.DefaultClient). Every request is attempted once: discordgo's
// rate-limit and 5xx retries are disabled.
func NewClient(token, channelID string, base *http.Client) (*Client, error) {
	if token == "" {
		return nil, errors.New("bot token empty")
	}
	if channelID == "" {
		return nil, errors.New("channel id empty")
	}
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	// The token goes through oauth2 so discordgo never sees it.
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bot"})

	s, err := discordgo.New("")
	if err != nil {
		return nil, err
	}
	s.Client = oauth2.NewClient(ctx, src)
	s.ShouldRetryOnRateLimit = false
	s.MaxRestRetries = 0
	return &Client{ChannelID: channelID, session: s}, nil
}

// Messages returns up to limit messages newest-first, strictly older than before when set.
func (c *Client) Messages(ctx context.Context, limit int, before string) (msgs []live.Message, err error) {
	ctx, span := telemetry.StartSpan(ctx, "discord.channel_messages",
		attribute.String("channel_id", c.ChannelID),
		attribute.Int("limit", limit),
		attribute.String("before", before),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	telemetry.IncCounter(telemetry.PagesFetched)
	var raw []*discordgo.Message
	telemetry.TimeFunc(telemetry.PageFetchDuration, func() {
		raw, err = c.session.ChannelMessages(c.ChannelID, limit, before, "", "", discordgo.WithContext(ctx))
	})
	if err != nil {
		return nil, wrapError(err)
	}
	telemetry.LoggerWithCorr(ctx).Debug("fetched history page",
		"channel_id", c.ChannelID, "before", before, "count", len(raw))
	return Convert(raw), nil
}

func wrapError(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return &APIError{Status: rest.Response.StatusCode, Body: string(rest.ResponseBody)}
	}
	// discordgo reports 429 separately once rate-limit retries are off.
	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) {
		apiErr := &APIError{Status: http.StatusTooManyRequests}
		if rl.RateLimit != nil && rl.TooManyRequests != nil {
			apiErr.Body = rl.Message
		}
		return apiErr
	}
	return fmt.Errorf("discord request: %w", err)
}

// Convert maps discordgo messages to live.Message, skipping nil entries.
func Convert(raw []*discordgo.Message) []live.Message {
	out := make([]live.Message, 0, len(raw))
	for _, m := range raw {
		if m == nil {
			continue
		}
		msg := live.Message{ID: m.ID, Timestamp: m.Timestamp, Content: m.Content}
		for _, e := range m.Embeds {
			if e == nil {
				continue
			}
			em := live.Embed{Title: e.Title, Description: e.Description}
			if e.Author != nil {
				em.AuthorName = e.Author.Name
			}
			if e.Footer != nil {
				em.FooterText = e.Footer.Text
			}
			msg.Embeds = append(msg.Embeds, em)
		}
		out = append(out, msg)
	}
	return out
}

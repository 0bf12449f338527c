package discordapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/onnwee/livecheck/telemetry"
	"github.com/onnwee/livecheck/testutil"
)

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		channel     string
		errContains string
	}{
		{"empty token", "", "1", "token empty"},
		{"empty channel", "tok", "", "channel id empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.token, tt.channel, nil)
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("NewClient() error = %v, want containing %q", err, tt.errContains)
			}
		})
	}
}

func TestClientMessages(t *testing.T) {
	srv := testutil.NewMockDiscordServer(t)
	srv.AddPage(
		testutil.Message("300", "2024-01-02T10:00:00Z", "hello"),
		testutil.Message("299", "2024-01-01T20:00:00Z", "",
			testutil.Embed("小毛 is now live on YouTube!", "desc", "小毛", "Pingcord")),
	)

	c, err := NewClient("secret-token", "42", srv.HTTPClient())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	msgs, err := c.Messages(context.Background(), 100, "")
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Messages() returned %d messages, want 2", len(msgs))
	}
	if msgs[1].ID != "299" || len(msgs[1].Embeds) != 1 {
		t.Fatalf("unexpected second message: %+v", msgs[1])
	}
	e := msgs[1].Embeds[0]
	if e.AuthorName != "小毛" || e.FooterText != "Pingcord" || e.Description != "desc" {
		t.Errorf("embed = %+v", e)
	}
	want := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	if !msgs[1].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", msgs[1].Timestamp, want)
	}

	reqs := srv.HistoryRequests()
	if len(reqs) != 1 {
		t.Fatalf("history requests = %d, want 1", len(reqs))
	}
	if reqs[0].Get("limit") != "100" || reqs[0].Get("before") != "" {
		t.Errorf("query = %v", reqs[0])
	}
	if got := srv.AuthHeaders()[0]; got != "Bot secret-token" {
		t.Errorf("Authorization = %q, want %q", got, "Bot secret-token")
	}
}

func TestClientMessagesCursor(t *testing.T) {
	srv := testutil.NewMockDiscordServer(t)
	c, err := NewClient("tok", "42", srv.HTTPClient())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	msgs, err := c.Messages(context.Background(), 50, "1234")
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Messages() = %v, want empty", msgs)
	}
	if q := srv.HistoryRequests()[0]; q.Get("before") != "1234" || q.Get("limit") != "50" {
		t.Errorf("query = %v", q)
	}
}

func TestClientMessagesAPIError(t *testing.T) {
	srv := testutil.NewMockDiscordServer(t)
	srv.FailHistory(http.StatusForbidden)
	c, err := NewClient("tok", "42", srv.HTTPClient())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	_, err = c.Messages(context.Background(), 100, "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Messages() error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusForbidden || !strings.Contains(apiErr.Body, "Missing Access") {
		t.Errorf("APIError = %+v", apiErr)
	}
	if len(srv.HistoryRequests()) != 1 {
		t.Errorf("history requests = %d, want exactly 1", len(srv.HistoryRequests()))
	}
}

func TestConvertSkipsNil(t *testing.T) {
	raw := []*discordgo.Message{
		nil,
		{ID: "1", Content: "x", Embeds: []*discordgo.MessageEmbed{nil, {Title: "t"}}},
	}
	out := Convert(raw)
	if len(out) != 1 || len(out[0].Embeds) != 1 || out[0].Embeds[0].Title != "t" {
		t.Errorf("Convert() = %+v", out)
	}
}

func TestClientMessagesRateLimited(t *testing.T) {
	srv := testutil.NewMockDiscordServer(t)
	srv.FailHistory(http.StatusTooManyRequests)
	c, err := NewClient("tok", "42", srv.HTTPClient())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	_, err = c.Messages(context.Background(), 100, "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Messages() error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want 429", apiErr.Status)
	}
	if !strings.Contains(apiErr.Body, "Missing Access") {
		t.Errorf("Body = %q, want server message", apiErr.Body)
	}
	if n := len(srv.HistoryRequests()); n != 1 {
		t.Errorf("history requests = %d, want exactly 1", n)
	}
}

func TestClientMessagesRecordsFetchDuration(t *testing.T) {
	telemetry.Init()
	before := histogramCount(t, telemetry.PageFetchDuration)

	srv := testutil.NewMockDiscordServer(t)
	c, err := NewClient("tok", "42", srv.HTTPClient())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if _, err := c.Messages(context.Background(), 100, ""); err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if got := histogramCount(t, telemetry.PageFetchDuration); got != before+1 {
		t.Errorf("fetch duration samples = %d, want %d", got, before+1)
	}
}

func histogramCount(t *testing.T, obs prometheus.Observer) uint64 {
	t.Helper()
	h, ok := obs.(prometheus.Histogram)
	if !ok {
		t.Fatalf("observer %T is not a histogram", obs)
	}
	m := &dto.Metric{}
	if err := h.Write(m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

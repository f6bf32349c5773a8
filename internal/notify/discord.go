package notify

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Embed sidebar colors.
const (
	discordColorAlert   = 0xE74C3C
	discordColorResolve = 0x2ECC71
)

// DiscordSender delivers notifications via a Discord webhook as a single
// embed.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
	now        func() time.Time
}

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

type discordPayload struct {
	Username string         `json:"username"`
	Embeds   []discordEmbed `json:"embeds"`
}

// NewDiscordSender creates a DiscordSender for the given webhook URL.
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		client:     newSenderClient(),
		now:        time.Now,
	}
}

// Send posts one embed to the webhook. Recovery titles get a green sidebar,
// everything else red. Discord answers 204 on success.
func (d *DiscordSender) Send(ctx context.Context, title, message string) error {
	color := discordColorAlert
	if strings.Contains(strings.ToLower(title), "recovered") {
		color = discordColorResolve
	}
	payload := discordPayload{
		Username: "polydash",
		Embeds: []discordEmbed{{
			Title:       title,
			Description: message,
			Color:       color,
			Timestamp:   d.now().UTC().Format(time.RFC3339),
		}},
	}
	return postJSON(ctx, d.client, "discord", d.webhookURL, payload)
}

// Name returns the sender identifier.
func (d *DiscordSender) Name() string {
	return "discord"
}

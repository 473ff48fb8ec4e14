// Package report delivers recaps and error reports to Discord.
package report

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"github.com/Archie-bot-stack/Archie/internal/logger"
)

// Attachment is a file uploaded alongside a message.
type Attachment struct {
	Name string
	Data []byte
}

// Message is one outbound report.
type Message struct {
	Content string
	Embed   *discordgo.MessageEmbed
	File    *Attachment
}

// Sender delivers a message to a destination.
type Sender interface {
	Send(ctx context.Context, channelID string, msg Message) error
}

// ChannelPoster is the part of a discordgo session used to post messages.
type ChannelPoster interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ChannelSender posts to channels through the bot's own session.
type ChannelSender struct {
	poster ChannelPoster
}

// NewChannelSender returns a sender posting through poster.
func NewChannelSender(poster ChannelPoster) *ChannelSender {
	return &ChannelSender{poster: poster}
}

// Send posts msg to channelID. An unset channel silently drops the message.
func (s *ChannelSender) Send(ctx context.Context, channelID string, msg Message) error {
	if channelID == "" {
		return nil
	}
	data := &discordgo.MessageSend{Content: msg.Content}
	if msg.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{msg.Embed}
	}
	if msg.File != nil {
		data.Files = []*discordgo.File{{
			Name:        msg.File.Name,
			ContentType: "image/png",
			Reader:      bytes.NewReader(msg.File.Data),
		}}
	}
	if _, err := s.poster.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send to channel %s: %w", channelID, err)
	}
	return nil
}

// WebhookSender posts to a Discord webhook through a tokenless session,
// which brings discordgo's multipart encoding and 429 retry handling. The
// channel ID passed to Send is ignored since the webhook already names its
// channel.
type WebhookSender struct {
	session *discordgo.Session
	id      string
	token   string
}

// NewWebhookSender returns a sender posting to a webhook URL of the form
// https://discord.com/api/webhooks/{id}/{token}.
func NewWebhookSender(webhookURL string) (*WebhookSender, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("create webhook session: %w", err)
	}
	session.Client = &http.Client{Timeout: 30 * time.Second}
	return &WebhookSender{session: session, id: id, token: token}, nil
}

func parseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	i := lo.IndexOf(parts, "webhooks")
	if i < 0 || i+2 >= len(parts) || parts[i+1] == "" || parts[i+2] == "" {
		return "", "", fmt.Errorf("webhook url %q has no /webhooks/{id}/{token} path", u.Redacted())
	}
	return parts[i+1], parts[i+2], nil
}

// Send executes the webhook with msg. Attachments go out as multipart form
// data alongside the JSON payload.
func (s *WebhookSender) Send(ctx context.Context, _ string, msg Message) error {
	params := &discordgo.WebhookParams{Content: msg.Content}
	if msg.Embed != nil {
		params.Embeds = []*discordgo.MessageEmbed{msg.Embed}
	}
	if msg.File != nil {
		params.Files = []*discordgo.File{{
			Name:        msg.File.Name,
			ContentType: "image/png",
			Reader:      bytes.NewReader(msg.File.Data),
		}}
	}
	if _, err := s.session.WebhookExecute(s.id, s.token, false, params, discordgo.WithContext(ctx)); err != nil {
		logger.Debug("Webhook execute failed", "webhook", s.id, "error", err)
		return fmt.Errorf("send webhook: %w", err)
	}
	return nil
}

package report

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/render"
)

const (
	reportTimeout = 5 * time.Second
	maxTraceLen   = 1800
	maxErrorLen   = 500
)

// CommandError describes a failed command invocation.
type CommandError struct {
	Command   string
	User      string
	UserID    string
	GuildID   string
	GuildName string
	Err       error
	Extra     map[string]string
}

// ErrorReporter posts failures to the errors channel. Reporting never
// blocks for long and its own failures are only logged.
type ErrorReporter struct {
	sender    Sender
	channelID string
	timeout   time.Duration
	newID     func() string
	now       func() time.Time
}

// NewErrorReporter returns a reporter posting to channelID.
func NewErrorReporter(sender Sender, channelID string) *ErrorReporter {
	return &ErrorReporter{
		sender:    sender,
		channelID: channelID,
		timeout:   reportTimeout,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// ReportTaskError reports a failed scheduled task.
func (r *ErrorReporter) ReportTaskError(ctx context.Context, task string, err error) {
	content := fmt.Sprintf("⚠️ Scheduled task `%s` failed:\n```\n%s```", task, render.Truncate(err.Error(), maxTraceLen))
	r.send(ctx, Message{Content: content}, "task", task)
}

// ReportEventError reports a failure while handling a gateway event.
func (r *ErrorReporter) ReportEventError(ctx context.Context, event, text string) {
	content := fmt.Sprintf("⚠️ Error in event `%s`:\n```\n%s```", event, render.Truncate(text, maxTraceLen))
	r.send(ctx, Message{Content: content}, "event", event)
}

// ReportCommandError reports a failed command and returns the incident ID
// included in the report.
func (r *ErrorReporter) ReportCommandError(ctx context.Context, ce CommandError) string {
	id := r.newID()
	r.send(ctx, Message{Embed: r.commandErrorEmbed(id, ce)}, "command", ce.Command, "incident", id)
	return id
}

func (r *ErrorReporter) commandErrorEmbed(id string, ce CommandError) *discordgo.MessageEmbed {
	guild := "DM"
	if ce.GuildID != "" {
		guild = fmt.Sprintf("%s (%s)", ce.GuildName, ce.GuildID)
	}
	errText := "unknown error"
	if ce.Err != nil {
		errText = fmt.Sprintf("%T: %s", ce.Err, render.Truncate(ce.Err.Error(), maxErrorLen))
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Command", Value: fmt.Sprintf("`/%s`", ce.Command), Inline: true},
		{Name: "User", Value: fmt.Sprintf("%s (%s)", ce.User, ce.UserID), Inline: true},
		{Name: "Guild", Value: guild, Inline: true},
		{Name: "Error", Value: "```" + errText + "```"},
	}
	keys := lo.Keys(ce.Extra)
	slices.Sort(keys)
	for _, k := range keys {
		fields = append(fields, &discordgo.MessageEmbedField{Name: k, Value: "`" + ce.Extra[k] + "`", Inline: true})
	}
	fields = append(fields, &discordgo.MessageEmbedField{Name: "Incident", Value: "`" + id + "`"})

	return &discordgo.MessageEmbed{
		Title:     "⚠️ Command Error",
		Color:     ColorRed,
		Timestamp: r.now().UTC().Format(time.RFC3339),
		Fields:    fields,
	}
}

func (r *ErrorReporter) send(ctx context.Context, msg Message, attrs ...any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.sender.Send(ctx, r.channelID, msg); err != nil {
		logger.Error("Failed to send error report", append(attrs, "error", err)...)
	}
}

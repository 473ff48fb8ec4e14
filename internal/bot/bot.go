// Package bot is the Discord front end: slash command dispatch, the guard
// in front of every command, and guild lifecycle notices.
package bot

import (
	"bytes"
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Archie-bot-stack/Archie/internal/config"
	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/models"
	"github.com/Archie-bot-stack/Archie/internal/render"
	"github.com/Archie-bot-stack/Archie/internal/report"
	"github.com/Archie-bot-stack/Archie/internal/services/usage"
)

const (
	handlerTimeout = 2 * time.Minute
	noticeTimeout  = 5 * time.Second
	maxMessageLen  = 2000
)

// API is the part of the ArchMC client the commands use.
type API interface {
	PlayerStatistics(ctx context.Context, mode, username string) *models.PlayerStatistics
	PlayerProfile(ctx context.Context, mode, username string) *models.Profile
	PlayerStat(ctx context.Context, mode, username, stat string) (models.StatRecord, bool)
	Leaderboard(ctx context.Context, mode, stat string, page, size int) *models.Leaderboard
	Clans(ctx context.Context) *models.ClanList
	GlobalLeaderboard(ctx context.Context, statID string) *models.Leaderboard
	GlobalStatistics(ctx context.Context, username string) *models.PlayerStatistics
	Economy(ctx context.Context, username string) *models.EconomyProfile
	Baltop(ctx context.Context, kind string) *models.Leaderboard
	PlayerGuild(ctx context.Context, username string) *models.Guild
	SearchGuilds(ctx context.Context, query string) *models.GuildSearch
	Avatar(ctx context.Context, uuid string) []byte
}

// Cards draws the images commands reply with.
type Cards interface {
	PlayerCard(spec render.CardSpec, card render.PlayerCard) ([]byte, error)
	ServerStats(card render.ServerCard) ([]byte, error)
	LineChart(series []models.Point, title string) ([]byte, error)
}

// Usage records handled commands.
type Usage interface {
	Record(ctx context.Context, ev usage.Event)
}

// Population answers /stats.
type Population interface {
	Query(ctx context.Context) models.PopulationReport
	History() models.PopulationHistory
}

// Reporter posts failures to the errors channel.
type Reporter interface {
	ReportCommandError(ctx context.Context, ce report.CommandError) string
	ReportEventError(ctx context.Context, event, text string)
}

// Deps are the services the bot works with.
type Deps struct {
	API        API
	Cards      Cards
	Pool       *render.Pool
	Usage      Usage
	Population Population
	Reporter   Reporter
	// Notices posts lifecycle messages to the configured channels.
	Notices  report.Sender
	Channels config.Channels
	Cooldown time.Duration
	Location *time.Location
}

// interactions is the part of a discordgo session used to answer commands.
type interactions interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot handles gateway events for one session.
type Bot struct {
	session  *discordgo.Session
	replies  interactions
	deps     Deps
	guard    *Guard
	guilds   *guildTracker
	commands map[string]*command
	// listWait bounds how long the ready guild list waits for guild names.
	listWait time.Duration
}

// New returns a bot driving session and registers its event handlers.
func New(session *discordgo.Session, deps Deps) *Bot {
	b := newBot(session, deps)
	b.session = session
	session.Identify.Intents = discordgo.IntentsGuilds
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	session.AddHandler(b.onGuildCreate)
	session.AddHandler(b.onGuildDelete)
	return b
}

func newBot(replies interactions, deps Deps) *Bot {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	b := &Bot{
		replies:  replies,
		deps:     deps,
		guard:    NewGuard(deps.Cooldown),
		guilds:   newGuildTracker(),
		listWait: 15 * time.Second,
	}
	b.commands = b.commandTable()
	return b
}

// Serve connects to the gateway and stays connected until ctx is done.
func (b *Bot) Serve(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	logger.Info("Connected to Discord gateway")

	<-ctx.Done()
	if err := b.session.Close(); err != nil {
		logger.Warn("Failed to close Discord gateway", "error", err)
	}
	return ctx.Err()
}

// String names the gateway in supervisor logs.
func (b *Bot) String() string {
	return "discord-gateway"
}

// invocation is one slash command call with its options flattened.
type invocation struct {
	name         string
	options      map[string]string
	userID       string
	userName     string
	guildID      string
	guildName    string
	botAvatarURL string
}

func (b *Bot) newInvocation(i *discordgo.Interaction) *invocation {
	data := i.ApplicationCommandData()
	in := &invocation{
		name:    data.Name,
		options: make(map[string]string, len(data.Options)),
		guildID: i.GuildID,
	}
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			in.options[opt.Name] = opt.StringValue()
		}
	}

	user := i.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	}
	if user != nil {
		in.userID, in.userName = user.ID, user.Username
	}
	if in.guildID != "" {
		in.guildName = b.guilds.name(in.guildID)
	}
	if b.session != nil && b.session.State != nil && b.session.State.User != nil {
		in.botAvatarURL = b.session.State.User.AvatarURL("")
	}
	return in
}

func (b *Bot) onInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return
	}
	defer b.recoverEvent("interaction")
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	b.dispatch(ctx, ic.Interaction)
}

// dispatch runs the guard, defers the reply, runs the command and sends the
// follow-up. Every call is recorded, refusals included.
func (b *Bot) dispatch(ctx context.Context, i *discordgo.Interaction) {
	in := b.newInvocation(i)
	cmd, ok := b.commands[in.name]
	if !ok {
		logger.Warn("Unknown command", "command", in.name)
		return
	}

	outcome := models.OutcomeOK
	defer func() {
		b.deps.Usage.Record(ctx, usage.Event{
			Command:   in.name,
			GuildID:   in.guildID,
			GuildName: in.guildName,
			UserID:    in.userID,
			Outcome:   outcome,
		})
	}()

	logger.Info("Command invoked", "command", in.name, "user", in.userName, "guild", in.guildName)

	if !cmd.free && !b.guard.Allow(in.userID) {
		outcome = models.OutcomeCooldown
		b.ephemeral(ctx, i, msgCooldown)
		return
	}
	if msg := precheck(cmd, in); msg != "" {
		outcome = models.OutcomeRefused
		b.ephemeral(ctx, i, msg)
		return
	}

	err := b.replies.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
	if err != nil {
		outcome = models.OutcomeError
		logger.Error("Failed to defer interaction", "command", in.name, "error", err)
		return
	}

	r, err := runCommand(ctx, cmd, in)
	switch {
	case err != nil:
		outcome = models.OutcomeError
		logger.Error("Command failed", "command", in.name, "user", in.userID, "error", err)
		incident := b.deps.Reporter.ReportCommandError(ctx, report.CommandError{
			Command:   in.name,
			User:      in.userName,
			UserID:    in.userID,
			GuildID:   in.guildID,
			GuildName: in.guildName,
			Err:       err,
			Extra:     extraFields(cmd, in),
		})
		logger.Debug("Command error reported", "command", in.name, "incident", incident)
		r = reply{content: fmt.Sprintf("Failed to fetch %s. Please try again later.", cmd.failure)}
	case r.noData:
		outcome = models.OutcomeNoData
	}

	if err := b.followup(ctx, i, r); err != nil {
		logger.Error("Failed to send command reply", "command", in.name, "error", err)
	}
}

func precheck(cmd *command, in *invocation) string {
	if len(cmd.usernames) > 0 {
		if msg := checkUsernames(in.options, cmd.usernames...); msg != "" {
			return msg
		}
	}
	if cmd.check != nil {
		return cmd.check(in)
	}
	return ""
}

func runCommand(ctx context.Context, cmd *command, in *invocation) (r reply, err error) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Command panicked", "command", in.name, "panic", p, "stack", string(debug.Stack()))
			r, err = reply{}, fmt.Errorf("panic: %v", p)
		}
	}()
	return cmd.run(ctx, in)
}

func extraFields(cmd *command, in *invocation) map[string]string {
	if len(cmd.extra) == 0 {
		return nil
	}
	out := make(map[string]string, len(cmd.extra))
	for _, k := range cmd.extra {
		out[k] = in.options[k]
	}
	return out
}

func (b *Bot) ephemeral(ctx context.Context, i *discordgo.Interaction, content string) {
	err := b.replies.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		logger.Error("Failed to send refusal", "error", err)
	}
}

func (b *Bot) followup(ctx context.Context, i *discordgo.Interaction, r reply) error {
	params := &discordgo.WebhookParams{Content: r.content}
	if r.embed != nil {
		params.Embeds = []*discordgo.MessageEmbed{r.embed}
	}
	for _, f := range r.files {
		params.Files = append(params.Files, &discordgo.File{
			Name:        f.Name,
			ContentType: "image/png",
			Reader:      bytes.NewReader(f.Data),
		})
	}
	_, err := b.replies.FollowupMessageCreate(i, true, params, discordgo.WithContext(ctx))
	return err
}

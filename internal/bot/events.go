package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/render"
	"github.com/Archie-bot-stack/Archie/internal/report"
)

const (
	msgOnline = "🟢 **Archie is now online!**"
	msgSynced = "✅ Archie slash commands are now fully synced and ready to use!"
)

type guildInfo struct {
	ID   string
	Name string
}

// guildTracker follows the guilds the session is in. After Ready the
// gateway streams a GuildCreate for every guild already joined; those are
// pending and do not count as joins.
type guildTracker struct {
	mu      sync.Mutex
	known   map[string]string
	pending map[string]struct{}
	settled chan struct{}
}

func newGuildTracker() *guildTracker {
	settled := make(chan struct{})
	close(settled)
	return &guildTracker{
		known:   make(map[string]string),
		pending: make(map[string]struct{}),
		settled: settled,
	}
}

// reset starts a new session with ids as the guilds it is already in. The
// returned channel closes once every one of them has been created.
func (t *guildTracker) reset(ids []string) <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.known = make(map[string]string, len(ids))
	t.pending = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		t.known[id] = ""
		t.pending[id] = struct{}{}
	}
	t.settled = make(chan struct{})
	if len(t.pending) == 0 {
		close(t.settled)
	}
	return t.settled
}

// created records a GuildCreate and reports whether it is a new join.
func (t *guildTracker) created(id, name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, seen := t.known[id]
	t.known[id] = name
	if _, ok := t.pending[id]; ok {
		delete(t.pending, id)
		if len(t.pending) == 0 {
			close(t.settled)
		}
		return false
	}
	return !seen
}

// deleted forgets id and returns the name it was known by.
func (t *guildTracker) deleted(id string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	name := t.known[id]
	delete(t.known, id)
	if _, ok := t.pending[id]; ok {
		delete(t.pending, id)
		if len(t.pending) == 0 {
			close(t.settled)
		}
	}
	return name
}

func (t *guildTracker) name(id string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.known[id]
}

// list returns the known guilds sorted by name.
func (t *guildTracker) list() []guildInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := lo.MapToSlice(t.known, func(id, name string) guildInfo {
		if name == "" {
			name = "Unknown"
		}
		return guildInfo{ID: id, Name: name}
	})
	slices.SortFunc(out, func(a, b guildInfo) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func guildListMessage(guilds []guildInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Connected to %d guild(s):", len(guilds))
	for _, g := range guilds {
		fmt.Fprintf(&sb, "\n- %s (ID: %s)", g.Name, g.ID)
	}
	return render.Truncate(sb.String(), maxMessageLen)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	defer b.recoverEvent("ready")

	logger.Info("Gateway ready", "user", r.User.Username, "guilds", len(r.Guilds))
	settled := b.guilds.reset(lo.Map(r.Guilds, func(g *discordgo.Guild, _ int) string { return g.ID }))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, "", definitions(), discordgo.WithContext(ctx)); err != nil {
		logger.Error("Failed to sync slash commands", "error", err)
		b.deps.Reporter.ReportEventError(ctx, "ready", fmt.Sprintf("command sync failed: %v", err))
	} else {
		logger.Info("Slash commands synced", "count", len(definitions()))
	}
	b.notice(b.deps.Channels.Status, msgOnline)

	go b.announceReady(settled)
}

// announceReady posts the ready notice and guild list once the guild names
// have streamed in, or after listWait.
func (b *Bot) announceReady(settled <-chan struct{}) {
	defer b.recoverEvent("ready")

	timer := time.NewTimer(b.listWait)
	defer timer.Stop()
	select {
	case <-settled:
	case <-timer.C:
		logger.Warn("Guild list incomplete, posting what is known")
	}

	b.notice(b.deps.Channels.Ready, msgSynced)
	b.notice(b.deps.Channels.Ready, guildListMessage(b.guilds.list()))
}

func (b *Bot) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	defer b.recoverEvent("guild_join")
	if g.Unavailable {
		return
	}
	if !b.guilds.created(g.ID, g.Name) {
		return
	}
	logger.Info("Joined guild", "guild", g.Name, "id", g.ID)
	b.notice(b.deps.Channels.GuildJoin, fmt.Sprintf("✅ Joined guild: **%s** (ID: %s)", g.Name, g.ID))
}

func (b *Bot) onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	defer b.recoverEvent("guild_remove")
	if g.Unavailable {
		logger.Warn("Guild unavailable", "id", g.ID)
		return
	}

	name := b.guilds.deleted(g.ID)
	if g.BeforeDelete != nil && g.BeforeDelete.Name != "" {
		name = g.BeforeDelete.Name
	}
	if name == "" {
		name = "Unknown"
	}
	logger.Info("Left guild", "guild", name, "id", g.ID)
	b.notice(b.deps.Channels.GuildLeave, fmt.Sprintf("❌ Left guild: **%s** (ID: %s)", name, g.ID))
}

// notice posts content to channelID. Failures are logged only.
func (b *Bot) notice(channelID, content string) {
	if channelID == "" || b.deps.Notices == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), noticeTimeout)
	defer cancel()
	if err := b.deps.Notices.Send(ctx, channelID, report.Message{Content: content}); err != nil {
		logger.Warn("Failed to post notice", "channel", channelID, "error", err)
	}
}

// recoverEvent reports a panic in an event handler. It must be deferred.
func (b *Bot) recoverEvent(event string) {
	p := recover()
	if p == nil {
		return
	}
	logger.Error("Event handler panicked", "event", event, "panic", p)
	if b.deps.Reporter != nil {
		b.deps.Reporter.ReportEventError(context.Background(), event, fmt.Sprintf("%v\n%s", p, debug.Stack()))
	}
}

package bot

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// Refusal replies sent before a command runs.
const (
	msgCooldown      = "Please wait a few seconds before using commands again."
	msgMention       = "Please enter a valid Minecraft username, not a Discord mention."
	msgMentions      = "Please enter valid Minecraft usernames, not Discord mentions."
	msgInvalidName   = "Invalid username. Minecraft usernames can only contain letters, numbers, and underscores (1-16 characters)."
	msgInvalidNames  = "Invalid username(s). Minecraft usernames can only contain letters, numbers, and underscores (1-16 characters)."
	msgBlockedName   = "That username cannot be looked up."
	msgBlockedNames  = "One of those usernames cannot be looked up."
	msgShortQuery    = "Search query must be at least 2 characters."
	maxUsernameLen   = 16
	maxQueryLen      = 50
	minQueryLen      = 2
	cooldownSweepLen = 1024
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,16}$`)
	mentionPattern  = regexp.MustCompile(`<@[!&]?\d+>`)
)

var blockedPatterns = []string{
	"nigger", "nigga", "n1gger", "n1gga", "nigg3r", "nigg4",
	"faggot", "f4ggot", "fag",
	"retard", "r3tard",
	"kike", "chink", "spic", "wetback", "beaner",
	"tranny", "trannie",
}

// SanitizeUsername trims and truncates raw to 16 characters and reports
// whether the result is a valid Minecraft username.
func SanitizeUsername(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if runes := []rune(name); len(runes) > maxUsernameLen {
		name = string(runes[:maxUsernameLen])
	}
	if !usernamePattern.MatchString(name) {
		return "", false
	}
	return name, true
}

// IsBlocked reports whether name contains a blocked term.
func IsBlocked(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range blockedPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// ContainsMention reports whether s holds a Discord user or role mention.
func ContainsMention(s string) bool {
	return mentionPattern.MatchString(s)
}

// SanitizeQuery trims and truncates a guild search query. It reports false
// for queries shorter than two characters.
func SanitizeQuery(raw string) (string, bool) {
	q := strings.TrimSpace(raw)
	if runes := []rune(q); len(runes) > maxQueryLen {
		q = string(runes[:maxQueryLen])
	}
	if len([]rune(q)) < minQueryLen {
		return "", false
	}
	return q, true
}

// Guard enforces the per-user command cooldown. A refused attempt does not
// extend the cooldown.
type Guard struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

// NewGuard returns a guard with the given cooldown.
func NewGuard(cooldown time.Duration) *Guard {
	return &Guard{cooldown: cooldown, last: make(map[string]time.Time), now: time.Now}
}

// Allow reports whether userID may run a command now and, if so, starts
// the user's cooldown.
func (g *Guard) Allow(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if last, ok := g.last[userID]; ok && now.Sub(last) < g.cooldown {
		return false
	}
	g.last[userID] = now

	if len(g.last) > cooldownSweepLen {
		for id, t := range g.last {
			if now.Sub(t) >= g.cooldown {
				delete(g.last, id)
			}
		}
	}
	return true
}

// checkUsernames sanitizes the named options in place. It returns the
// refusal to send, or "" when every name may be looked up.
func checkUsernames(opts map[string]string, names ...string) string {
	plural := len(names) > 1
	pick := func(one, many string) string {
		if plural {
			return many
		}
		return one
	}

	for _, n := range names {
		if ContainsMention(opts[n]) {
			return pick(msgMention, msgMentions)
		}
	}
	clean := make([]string, len(names))
	for i, n := range names {
		name, ok := SanitizeUsername(opts[n])
		if !ok {
			return pick(msgInvalidName, msgInvalidNames)
		}
		clean[i] = name
	}
	for _, name := range clean {
		if IsBlocked(name) {
			return pick(msgBlockedName, msgBlockedNames)
		}
	}
	for i, n := range names {
		opts[n] = clean[i]
	}
	return ""
}

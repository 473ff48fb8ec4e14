package archapi

import (
	"context"
	"fmt"

	"github.com/Archie-bot-stack/Archie/internal/logger"
)

const (
	avatarSize     = 80
	fallbackAvatar = "MHF_Steve"
	// Smaller bodies are error pages rather than images.
	minAvatarBytes = 100
)

// Avatar fetches the 80px head of the player with the given UUID, falling
// back to the default Steve head. It returns nil when neither is available.
func (c *Client) Avatar(ctx context.Context, uuid string) []byte {
	var ids []string
	if uuid != "" {
		ids = append(ids, uuid)
	}
	ids = append(ids, fallbackAvatar)

	for _, id := range ids {
		u := fmt.Sprintf("%s/%s/%d", c.config.AvatarBaseURL, id, avatarSize)
		body, err := c.getAux(ctx, u)
		if err != nil {
			logger.Debug("Avatar lookup failed", "id", id, "error", err)
			continue
		}
		if len(body) <= minAvatarBytes {
			logger.Debug("Avatar body too small", "id", id, "bytes", len(body))
			continue
		}
		return body
	}
	return nil
}

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"pkg.mon.icu/relay/internal/entity"
	"pkg.mon.icu/relay/internal/snowflake"
)

var ErrNoImage = errors.New("emoji has no image staged")

// requester is the part of discordgo.Session used for REST calls.
type requester interface {
	RequestWithBucketID(method, urlStr string, data interface{}, bucketID string) ([]byte, error)
}

// UploadEmoji creates e in the guild from its staged image and returns the
// emoji as created by Discord. The staged image is released on success.
func (c *Cluster) UploadEmoji(guildID snowflake.ID, e *entity.Emoji) (*entity.Emoji, error) {
	if !e.HasImage() {
		return nil, ErrNoImage
	}

	body, err := e.BuildJSON(false)
	if err != nil {
		return nil, fmt.Errorf("couldn't encode emoji: %w", err)
	}

	endpoint := discordgo.EndpointGuildEmojis(guildID.String())
	res, err := c.rest.RequestWithBucketID(http.MethodPost, endpoint, json.RawMessage(body), endpoint)
	if err != nil {
		return nil, fmt.Errorf("couldn't create emoji %s: %w", e.Name, err)
	}
	if !gjson.ValidBytes(res) {
		return nil, fmt.Errorf("couldn't create emoji %s: malformed response", e.Name)
	}

	e.ClearImage()
	created := new(entity.Emoji).FillFromJSON(gjson.ParseBytes(res))
	c.logger.Info("Created emoji.", zap.Stringer("guild", guildID), zap.String("emoji", created.Format()))
	return created, nil
}

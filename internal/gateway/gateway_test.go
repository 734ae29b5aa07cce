package gateway

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"
	"pkg.mon.icu/relay/internal/entity"
	"pkg.mon.icu/relay/internal/event"
	"pkg.mon.icu/relay/internal/metrics"
	"pkg.mon.icu/relay/internal/snowflake"
)

func newTestCluster(t *testing.T, shards int) *Cluster {
	t.Helper()

	log := zaptest.NewLogger(t)
	m := metrics.NewRegistry()
	c, err := NewCluster(log, "Bot test-token", shards, event.NewDispatcher(log, m), m)
	require.NoError(t, err)
	return c
}

func TestNewCluster(t *testing.T) {
	c := newTestCluster(t, 3)

	require.Len(t, c.Shards(), 3)
	for i, s := range c.Shards() {
		assert.Equal(t, i, s.ShardID())
		assert.Equal(t, i, s.session.ShardID)
		assert.Equal(t, 3, s.session.ShardCount)
		assert.True(t, s.session.SyncEvents)
		assert.False(t, s.session.StateEnabled)
	}

	_, err := NewCluster(zaptest.NewLogger(t), "Bot test-token", 0, c.Dispatcher(), metrics.NewRegistry())
	assert.Error(t, err)
}

func TestShardOnEventDispatches(t *testing.T) {
	c := newTestCluster(t, 2)

	var got *event.MessageDelete
	c.Dispatcher().OnMessageDelete.Subscribe(func(e *event.MessageDelete) error {
		got = e
		return nil
	})

	c.Shards()[1].onEvent(nil, &discordgo.Event{
		Operation: 0,
		Sequence:  7,
		Type:      "MESSAGE_DELETE",
		RawData:   json.RawMessage(`{"id":"11","channel_id":"22"}`),
	})

	require.NotNil(t, got)
	assert.Equal(t, 1, got.Conn.ShardID())
	assert.Equal(t, snowflake.ID(11), got.Deleted.ID)
	assert.Equal(t, snowflake.ID(22), got.Deleted.ChannelID)
	assert.Equal(t, int64(7), gjson.Get(got.Raw, "s").Int())
	assert.Equal(t, "MESSAGE_DELETE", gjson.Get(got.Raw, "t").String())
}

func TestEnvelopeWithoutData(t *testing.T) {
	raw, err := envelope(&discordgo.Event{Type: "RESUMED", Sequence: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":0,"s":3,"t":"RESUMED"}`, string(raw))
}

type fakeRequester struct {
	method, url, bucket string
	body                string
	res                 []byte
	err                 error
}

func (f *fakeRequester) RequestWithBucketID(method, urlStr string, data interface{}, bucketID string) ([]byte, error) {
	f.method, f.url, f.bucket = method, urlStr, bucketID
	f.body = string(data.(json.RawMessage))
	return f.res, f.err
}

func TestUploadEmoji(t *testing.T) {
	c := newTestCluster(t, 1)
	rest := &fakeRequester{res: []byte(`{"id":"99","name":"pepe","animated":true,"available":true,"user":{"id":"5"}}`)}
	c.rest = rest

	e := entity.NewEmoji("pepe", 0, 0)
	_, err := e.LoadImage([]byte("GIF89a"), entity.ImageGIF)
	require.NoError(t, err)

	created, err := c.UploadEmoji(42, e)
	require.NoError(t, err)

	assert.Equal(t, "POST", rest.method)
	assert.Equal(t, discordgo.EndpointGuildEmojis("42"), rest.url)
	assert.Equal(t, rest.url, rest.bucket)
	assert.JSONEq(t, `{"name":"pepe","image":"data:image/gif;base64,R0lGODlh"}`, rest.body)

	assert.False(t, e.HasImage())
	assert.Equal(t, "a:pepe:99", created.Format())
	assert.Equal(t, snowflake.ID(5), created.UserID)
}

func TestUploadEmojiErrors(t *testing.T) {
	c := newTestCluster(t, 1)

	_, err := c.UploadEmoji(42, entity.NewEmoji("pepe", 0, 0))
	assert.ErrorIs(t, err, ErrNoImage)

	restErr := errors.New("HTTP 400 Bad Request")
	c.rest = &fakeRequester{err: restErr}
	e, err := entity.NewEmoji("pepe", 0, 0).LoadImage([]byte{1, 2, 3}, entity.ImagePNG)
	require.NoError(t, err)

	_, err = c.UploadEmoji(42, e)
	assert.ErrorIs(t, err, restErr)
	assert.True(t, e.HasImage(), "image stays staged for a retry")
}

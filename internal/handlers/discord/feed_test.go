package discord

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormhall/qw-bot-discord/internal/config"
)

type fakeSession struct {
	seq      int
	messages []*discordgo.Message // newest first
	edits    []string
	deletes  []string
	sendErr  error
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.seq++
	msg := &discordgo.Message{ID: fmt.Sprintf("msg-%d", f.seq), ChannelID: channelID}
	f.messages = append([]*discordgo.Message{msg}, f.messages...)
	return msg, nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, m.ID)
	return &discordgo.Message{ID: m.ID}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.deletes = append(f.deletes, messageID)
	return nil
}

func (f *fakeSession) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	if len(f.messages) == 0 {
		return nil, nil
	}
	return f.messages[:1], nil
}

func newTestFeed() (*Feed, *fakeSession) {
	session := &fakeSession{}
	feed := NewFeed(&FeedConfig{
		Session:  session,
		Renderer: NewCardRenderer(config.RulesConfig{}),
	})
	return feed, session
}

func TestFeed_PostAndLatest(t *testing.T) {
	ctx := context.Background()
	feed, session := newTestFeed()

	id, err := feed.Post(ctx, "table-1", cardRecord())
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	latest, err := feed.LatestMessageID(ctx, "table-1")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", latest)

	_, err = feed.Post(ctx, "table-1", cardRecord())
	require.NoError(t, err)

	latest, err = feed.LatestMessageID(ctx, "table-1")
	require.NoError(t, err)
	assert.Equal(t, "msg-2", latest)

	session.sendErr = errors.New("discord down")
	_, err = feed.Post(ctx, "table-1", cardRecord())
	require.Error(t, err)
}

func TestFeed_EditAndDelete(t *testing.T) {
	ctx := context.Background()
	feed, session := newTestFeed()

	id, err := feed.Post(ctx, "table-1", cardRecord())
	require.NoError(t, err)

	require.NoError(t, feed.Edit(ctx, "table-1", id, cardRecord()))
	assert.Equal(t, []string{id}, session.edits)

	require.NoError(t, feed.Delete(ctx, "table-1", id))
	assert.Equal(t, []string{id}, session.deletes)
}

func TestFeed_LatestMessageID_EmptyChannel(t *testing.T) {
	feed, _ := newTestFeed()

	latest, err := feed.LatestMessageID(context.Background(), "table-1")
	require.NoError(t, err)
	assert.Empty(t, latest)
}

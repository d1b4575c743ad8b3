package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
	qwerr "github.com/stormhall/qw-bot-discord/internal/errors"
)

// messageSession is the slice of discordgo.Session the feed needs
type messageSession interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// Feed publishes contest cards as Discord messages. It is the transport
// behind the arbitration channel's re-publication rule: the channel decides
// when a card moves to the bottom of the feed, the Feed just posts, edits
// and deletes messages.
type Feed struct {
	session  messageSession
	renderer *CardRenderer
}

// FeedConfig holds the dependencies for the Discord feed
type FeedConfig struct {
	Session  messageSession
	Renderer *CardRenderer
}

// NewFeed creates a Discord-backed contest feed
func NewFeed(cfg *FeedConfig) *Feed {
	if cfg.Session == nil {
		panic("discord session is required")
	}
	if cfg.Renderer == nil {
		panic("card renderer is required")
	}
	return &Feed{
		session:  cfg.Session,
		renderer: cfg.Renderer,
	}
}

// Post sends a fresh card and returns its message ID
func (f *Feed) Post(ctx context.Context, channelID string, record *contest.Record) (string, error) {
	msg, err := f.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{f.renderer.Embed(record)},
		Components: f.renderer.Components(record),
	})
	if err != nil {
		return "", qwerr.Wrap(err, "failed to post contest card")
	}
	return msg.ID, nil
}

// Edit updates the card in place
func (f *Feed) Edit(ctx context.Context, channelID, messageID string, record *contest.Record) error {
	embeds := []*discordgo.MessageEmbed{f.renderer.Embed(record)}
	components := f.renderer.Components(record)

	_, err := f.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return qwerr.Wrap(err, "failed to edit contest card")
	}
	return nil
}

// Delete removes a stale card
func (f *Feed) Delete(ctx context.Context, channelID, messageID string) error {
	if err := f.session.ChannelMessageDelete(channelID, messageID); err != nil {
		return qwerr.Wrap(err, "failed to delete contest card")
	}
	return nil
}

// LatestMessageID returns the newest message in the channel, or empty when
// the channel has no messages
func (f *Feed) LatestMessageID(ctx context.Context, channelID string) (string, error) {
	msgs, err := f.session.ChannelMessages(channelID, 1, "", "", "")
	if err != nil {
		return "", qwerr.Wrap(err, "failed to read channel messages")
	}
	if len(msgs) == 0 {
		return "", nil
	}
	return msgs[0].ID, nil
}

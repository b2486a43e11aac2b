package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ticketdesk/transcript-ledger/internal/service"
)

// OnMessageCreate dispatches prefix commands.
func (g *Gateway) OnMessageCreate(m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil || m.Author.Bot || g.reports == nil {
		return
	}
	cmd, ok := ParseCommand(g.prefix, m.Content)
	if !ok {
		return
	}
	ctx, cancel := g.handlerContext()
	defer cancel()

	switch cmd.Kind {
	case CommandLookup:
		g.lookup(ctx, m.Message, cmd)
	case CommandStats:
		g.stats(ctx, m.Message, cmd)
	}
}

func (g *Gateway) lookup(ctx context.Context, m *discordgo.Message, cmd Command) {
	var ownerID string
	if len(cmd.Args) > 0 {
		ownerID, _ = MentionedUserID(cmd.Args[0])
	}
	if ownerID == "" {
		g.reply(ctx, m.ChannelID, &discordgo.MessageSend{Content: "Incorrect command. Use: " + g.prefix + "lookup @user"})
		return
	}
	owner := Owner{ID: ownerID}
	for _, u := range m.Mentions {
		if u != nil && u.ID == ownerID {
			owner.Name = u.String()
			owner.AvatarURL = u.AvatarURL("")
		}
	}

	records, err := g.reports.Lookup(ctx, ownerID)
	if err != nil {
		g.reply(ctx, m.ChannelID, &discordgo.MessageSend{Content: "Could not read the ledger right now, try again later"})
		return
	}
	for _, msg := range LookupReplies(owner, records) {
		g.reply(ctx, m.ChannelID, msg)
	}
}

func (g *Gateway) stats(ctx context.Context, m *discordgo.Message, cmd Command) {
	category := ""
	if len(cmd.Args) > 0 {
		category = cmd.Args[0]
	}
	if err := g.reports.CheckStats(m.ChannelID, category); err != nil {
		if errors.Is(err, service.ErrWrongChannel) {
			g.reply(ctx, m.ChannelID, &discordgo.MessageSend{Content: "Command not available from this channel"})
			return
		}
		g.reply(ctx, m.ChannelID, &discordgo.MessageSend{Content: "Incorrect command. Use: " + g.prefix + "stats referral"})
		return
	}

	g.reply(ctx, m.ChannelID, &discordgo.MessageSend{Content: "Gathering referral data"})
	stats, err := g.reports.Stats(ctx, m.ChannelID, category)
	if err != nil {
		g.reply(ctx, m.ChannelID, &discordgo.MessageSend{Content: "Could not read the ledger right now, try again later"})
		return
	}
	g.reply(ctx, m.ChannelID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{ReferralEmbed(stats)}})
}

func (g *Gateway) reply(ctx context.Context, channelID string, msg *discordgo.MessageSend) {
	if _, err := g.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx)); err != nil {
		g.logger.Warn("failed to send reply", zap.String("channel_id", channelID), zap.Error(err))
	}
}

package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
	"github.com/ticketdesk/transcript-ledger/internal/reporting"
)

// Embed colours.
const (
	ColorGreen    = 0x2ecc71
	ColorRed      = 0xe74c3c
	ColorDarkGray = 0x607d8b
	ColorBlue     = 0x3498db
)

// Owner is the display identity of a lookup target.
type Owner struct {
	ID        string
	Name      string
	AvatarURL string
}

// Mention renders the owner as a chat mention.
func (o Owner) Mention() string {
	return "<@" + o.ID + ">"
}

// LookupEmbed summarizes one ledger record.
func LookupEmbed(owner Owner, rec domain.TicketRecord) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ticket Owner", Value: owner.Mention(), Inline: true},
			{Name: "Ticket Number", Value: rec.Bare(), Inline: true},
			{Name: "Date/time(MT)", Value: rec.Timestamp, Inline: true},
			{Name: "Direct Transcript", Value: fmt.Sprintf("[Direct Transcript](%s)", rec.TranscriptURL), Inline: true},
		},
	}
	if owner.Name != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: owner.Name, IconURL: owner.AvatarURL}
	}

	status := &discordgo.MessageEmbedField{Name: "Approval Status", Inline: true}
	switch rec.ApprovalStatus {
	case domain.ApprovalAccepted:
		embed.Color = ColorGreen
		status.Value = "Accepted ✅"
	case domain.ApprovalDenied:
		embed.Color = ColorRed
		status.Value = "Denied ❌"
	default:
		embed.Color = ColorDarkGray
		status.Value = "Pending"
	}
	embed.Fields = append(embed.Fields, status)
	return embed
}

// LookupReplies builds the messages answering a lookup. The heading rides on
// the first embed only.
func LookupReplies(owner Owner, records []domain.TicketRecord) []*discordgo.MessageSend {
	if len(records) == 0 {
		return []*discordgo.MessageSend{{Content: "Could not find any tickets opened by " + owner.Mention()}}
	}
	out := make([]*discordgo.MessageSend, 0, len(records))
	for i, rec := range records {
		msg := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{LookupEmbed(owner, rec)}}
		if i == 0 {
			msg.Content = fmt.Sprintf("Here are all of the stored tickets opened by %s: ", owner.Mention())
		}
		out = append(out, msg)
	}
	return out
}

// ReferralEmbed renders the referral tally.
func ReferralEmbed(stats reporting.ReferralStats) *discordgo.MessageEmbed {
	o1 := stats.Counts[domain.ReferralOption1]
	o2 := stats.Counts[domain.ReferralOption2]
	o3 := stats.Counts[domain.ReferralOption3]
	return &discordgo.MessageEmbed{
		Color: ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "REFERRAL DATA",
				Value:  fmt.Sprintf("Number of players from Option1: %d\nNumber of players from Option2: %d\nNumber of players from Option3: %d\n\n", o1, o2, o3),
				Inline: true,
			},
			{
				Name:   "NOTE",
				Value:  fmt.Sprintf("This data was generated using %d applications", stats.Total),
				Inline: true,
			},
		},
	}
}

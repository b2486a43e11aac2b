package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"github.com/ticketdesk/transcript-ledger/internal/ledger"
	"github.com/ticketdesk/transcript-ledger/internal/reporting"
	"github.com/ticketdesk/transcript-ledger/internal/service"
	"github.com/ticketdesk/transcript-ledger/internal/store"
	"github.com/ticketdesk/transcript-ledger/internal/transcript"
)

const (
	transcriptChannel = "transcripts"
	staffChannel      = "staff"
	ticketBot         = "ticket-bot"
)

type sentMessage struct {
	channelID string
	msg       *discordgo.MessageSend
}

type fakeSession struct {
	messages  map[string]*discordgo.Message
	reactions []string
	sent      []sentMessage
	reactErr  error
}

func (f *fakeSession) ChannelMessage(_, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	msg, ok := f.messages[messageID]
	if !ok {
		return nil, errors.New("404: unknown message")
	}
	return msg, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, sentMessage{channelID: channelID, msg: data})
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeSession) MessageReactionAdd(_, _, emojiID string, _ ...discordgo.RequestOption) error {
	if f.reactErr != nil {
		return f.reactErr
	}
	f.reactions = append(f.reactions, emojiID)
	return nil
}

type gatewayHarness struct {
	gw      *Gateway
	session *fakeSession
	mem     *store.Memory
	ledger  *ledger.Ledger
}

func newGateway(t *testing.T) *gatewayHarness {
	t.Helper()
	mem := store.NewMemory([]string{"Timestamp", "Discord ID", "Ticket", "Approval", "Transcript", "Referral"})
	l := ledger.New(ledger.Dependencies{Store: mem})
	session := &fakeSession{messages: map[string]*discordgo.Message{}}
	gw := NewGateway(Dependencies{
		Session: session,
		Reports: service.NewReportService(reporting.NewService(l), staffChannel, nil),
		Prefix:  "/",
	})
	gw.SetTickets(service.NewTicketService(service.TicketDependencies{
		Parser: transcript.NewParser(time.UTC),
		Ledger: l,
		Chat:   gw,
		Channels: service.Channels{
			TranscriptChannelID: transcriptChannel,
			TicketBotID:         ticketBot,
		},
	}))
	return &gatewayHarness{gw: gw, session: session, mem: mem, ledger: l}
}

func transcriptPost(id, number, owner string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		ChannelID: transcriptChannel,
		Author:    &discordgo.User{ID: ticketBot, Bot: true},
		Timestamp: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Embeds: []*discordgo.MessageEmbed{{
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Ticket Owner", Value: "<@" + owner + ">"},
				{Name: "Ticket Name", Value: "closed-" + number},
				{Name: "Panel Name", Value: "apply"},
				{Name: "Direct Transcript", Value: "[Direct Transcript](http://t/" + number + ")"},
			},
		}},
	}
}

func (h *gatewayHarness) command(channelID, content string, mentions ...*discordgo.User) {
	h.gw.OnMessageCreate(&discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: channelID,
		Content:   content,
		Author:    &discordgo.User{ID: "staff-1"},
		Mentions:  mentions,
	}})
}

func (h *gatewayHarness) contents() []string {
	var out []string
	for _, s := range h.session.sent {
		out = append(out, s.msg.Content)
	}
	return out
}

func TestToTranscript(t *testing.T) {
	msg := ToTranscript(transcriptPost("m1", "0670", "42"))
	require.Equal(t, "m1", msg.ID)
	require.Equal(t, ticketBot, msg.AuthorID)
	require.Len(t, msg.Fields, 4)
	require.Equal(t, "closed-0670", msg.Fields[1].Value)

	bare := ToTranscript(&discordgo.Message{ID: "m2"})
	require.Empty(t, bare.AuthorID)
	require.Empty(t, bare.Fields)
}

func TestTranscriptEditThenReactions(t *testing.T) {
	h := newGateway(t)
	post := transcriptPost("m1", "0670", "42")
	h.session.messages["m1"] = post

	// Partial edit payloads are completed from the API.
	h.gw.OnMessageUpdate(&discordgo.MessageUpdate{Message: &discordgo.Message{ID: "m1", ChannelID: transcriptChannel}})
	require.Equal(t, []string{"✅", "❌", "❕"}, h.session.reactions)

	h.gw.OnMessageUpdate(&discordgo.MessageUpdate{Message: post})
	require.Equal(t, 1, h.mem.Calls("append"))

	h.gw.OnReactionAdd(&discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID: "staff-1", MessageID: "m1", ChannelID: transcriptChannel, Emoji: discordgo.Emoji{Name: "✅"},
	}})
	require.Equal(t, []string{"✅", "❌", "❕", "🟣", "🔵", "🟡"}, h.session.reactions)

	h.gw.OnReactionAdd(&discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID: "staff-1", MessageID: "m1", ChannelID: transcriptChannel, Emoji: discordgo.Emoji{Name: "🔵"},
	}})

	all, err := h.ledger.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "accepted", string(all[0].ApprovalStatus))
	require.Equal(t, "option2", string(all[0].ReferralCategory))
}

func TestAddReactionsStopsOnError(t *testing.T) {
	h := newGateway(t)
	h.session.reactErr = errors.New("missing permissions")
	err := h.gw.AddReactions(context.Background(), transcriptChannel, "m1", []string{"✅", "❌"})
	require.ErrorContains(t, err, "missing permissions")
}

func TestLookupCommand(t *testing.T) {
	h := newGateway(t)
	h.gw.OnMessageUpdate(&discordgo.MessageUpdate{Message: transcriptPost("m1", "0001", "42")})
	h.gw.OnMessageUpdate(&discordgo.MessageUpdate{Message: transcriptPost("m2", "0002", "7")})
	h.gw.OnMessageUpdate(&discordgo.MessageUpdate{Message: transcriptPost("m3", "0003", "42")})

	h.command("general", "/lookup <@42>", &discordgo.User{ID: "42", Username: "user", Discriminator: "0001"})
	require.Len(t, h.session.sent, 2)
	require.Equal(t, "Here are all of the stored tickets opened by <@42>: ", h.session.sent[0].msg.Content)
	require.Equal(t, "0001", h.session.sent[0].msg.Embeds[0].Fields[1].Value)
	require.Equal(t, "0003", h.session.sent[1].msg.Embeds[0].Fields[1].Value)
	require.NotNil(t, h.session.sent[0].msg.Embeds[0].Author)

	h.session.sent = nil
	h.command("general", "/search <@99>")
	require.Equal(t, []string{"Could not find any tickets opened by <@99>"}, h.contents())

	h.session.sent = nil
	h.command("general", "/lookup")
	require.Equal(t, []string{"Incorrect command. Use: /lookup @user"}, h.contents())
}

func TestStatsCommand(t *testing.T) {
	h := newGateway(t)

	h.command("general", "/stats referral")
	require.Equal(t, []string{"Command not available from this channel"}, h.contents())

	h.session.sent = nil
	h.command(staffChannel, "/stats approvals")
	require.Equal(t, []string{"Incorrect command. Use: /stats referral"}, h.contents())

	h.session.sent = nil
	h.command(staffChannel, "/analytics referral")
	require.Len(t, h.session.sent, 2)
	require.Equal(t, "Gathering referral data", h.session.sent[0].msg.Content)
	require.Equal(t, "This data was generated using 0 applications", h.session.sent[1].msg.Embeds[0].Fields[1].Value)
}

func TestCommandsIgnoreBotsAndPlainText(t *testing.T) {
	h := newGateway(t)
	h.gw.OnMessageCreate(&discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: staffChannel,
		Content:   "/stats referral",
		Author:    &discordgo.User{ID: "other-bot", Bot: true},
	}})
	h.command(staffChannel, "stats referral")
	require.Empty(t, h.session.sent)
}

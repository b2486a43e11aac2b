// Package discord connects the ticket workflow and report commands to a
// Discord bot session.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ticketdesk/transcript-ledger/internal/service"
	"github.com/ticketdesk/transcript-ledger/internal/transcript"
)

const handlerTimeout = 30 * time.Second

// Session is the subset of *discordgo.Session the gateway calls.
type Session interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

// Dependencies bundles collaborators for the gateway.
type Dependencies struct {
	Session Session
	Tickets *service.TicketService
	Reports *service.ReportService
	Prefix  string
	Logger  *zap.Logger
	// TranscriptChannelID limits which edits are worth completing from the API.
	TranscriptChannelID string
}

// Gateway routes Discord events into the services and implements
// service.ChatClient.
type Gateway struct {
	session Session
	tickets *service.TicketService
	reports *service.ReportService
	prefix  string
	logger  *zap.Logger
	watch   string

	mu   sync.RWMutex
	base context.Context
}

// NewGateway constructs the gateway.
func NewGateway(deps Dependencies) *Gateway {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		session: deps.Session,
		tickets: deps.Tickets,
		reports: deps.Reports,
		prefix:  deps.Prefix,
		logger:  logger,
		watch:   deps.TranscriptChannelID,
		base:    context.Background(),
	}
}

// NewSession creates a bot session with the intents the gateway needs.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, errors.New("discord token required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildMessageReactions |
		discordgo.IntentMessageContent
	return s, nil
}

// SetTickets attaches the ticket workflow; it needs the gateway as its chat
// client, so it is wired after construction.
func (g *Gateway) SetTickets(tickets *service.TicketService) {
	g.tickets = tickets
}

// Register installs the event handlers on s and binds handler contexts to ctx.
func (g *Gateway) Register(ctx context.Context, s *discordgo.Session) {
	g.mu.Lock()
	g.base = ctx
	g.mu.Unlock()

	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) { g.OnReady(r) })
	s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageUpdate) { g.OnMessageUpdate(m) })
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) { g.OnReactionAdd(r) })
	s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) { g.OnMessageCreate(m) })
}

func (g *Gateway) handlerContext() (context.Context, context.CancelFunc) {
	g.mu.RLock()
	base := g.base
	g.mu.RUnlock()
	return context.WithTimeout(base, handlerTimeout)
}

// OnReady records the bot's own id so its reactions are ignored.
func (g *Gateway) OnReady(r *discordgo.Ready) {
	if r.User == nil {
		return
	}
	if g.tickets != nil {
		g.tickets.SetSelfID(r.User.ID)
	}
	g.logger.Info("bot is online", zap.String("user_id", r.User.ID), zap.Int("guilds", len(r.Guilds)))
}

// OnMessageUpdate handles the ticket bot's edit that finalizes a transcript.
func (g *Gateway) OnMessageUpdate(m *discordgo.MessageUpdate) {
	if m.Message == nil || g.tickets == nil {
		return
	}
	if g.watch != "" && m.ChannelID != g.watch {
		return
	}
	ctx, cancel := g.handlerContext()
	defer cancel()

	msg := m.Message
	if msg.Author == nil || len(msg.Embeds) == 0 {
		full, err := g.session.ChannelMessage(msg.ChannelID, msg.ID, discordgo.WithContext(ctx))
		if err != nil {
			g.logger.Warn("failed to load edited message", zap.String("message_id", msg.ID), zap.Error(err))
			return
		}
		msg = full
	}

	outcome, err := g.tickets.HandleTranscript(ctx, ToTranscript(msg))
	g.logOutcome("transcript", msg.ID, string(outcome), err)
}

// OnReactionAdd handles approval and referral reactions.
func (g *Gateway) OnReactionAdd(r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil || g.tickets == nil {
		return
	}
	ctx, cancel := g.handlerContext()
	defer cancel()

	outcome, err := g.tickets.HandleReaction(ctx, service.ReactionEvent{
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Symbol:    r.Emoji.Name,
	})
	g.logOutcome("reaction", r.MessageID, string(outcome), err)
}

func (g *Gateway) logOutcome(kind, messageID, outcome string, err error) {
	if err != nil {
		g.logger.Warn("event not applied", zap.String("kind", kind), zap.String("message_id", messageID), zap.String("outcome", outcome), zap.Error(err))
		return
	}
	g.logger.Debug("event handled", zap.String("kind", kind), zap.String("message_id", messageID), zap.String("outcome", outcome))
}

// AddReactions adds each symbol to the message in order.
func (g *Gateway) AddReactions(ctx context.Context, channelID, messageID string, symbols []string) error {
	for _, symbol := range symbols {
		if err := g.session.MessageReactionAdd(channelID, messageID, symbol, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("add reaction %s: %w", symbol, err)
		}
	}
	return nil
}

// FetchMessage loads a message and converts it for the workflow.
func (g *Gateway) FetchMessage(ctx context.Context, channelID, messageID string) (transcript.Message, error) {
	msg, err := g.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return transcript.Message{}, fmt.Errorf("fetch message %s: %w", messageID, err)
	}
	return ToTranscript(msg), nil
}

// ToTranscript flattens the first embed of msg.
func ToTranscript(msg *discordgo.Message) transcript.Message {
	out := transcript.Message{
		ID:        msg.ID,
		ChannelID: msg.ChannelID,
		CreatedAt: msg.Timestamp,
	}
	if msg.Author != nil {
		out.AuthorID = msg.Author.ID
	}
	if len(msg.Embeds) > 0 && msg.Embeds[0] != nil {
		for _, f := range msg.Embeds[0].Fields {
			if f == nil {
				continue
			}
			out.Fields = append(out.Fields, transcript.Field{Name: f.Name, Value: f.Value})
		}
	}
	return out
}

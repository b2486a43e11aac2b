package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
	"github.com/ticketdesk/transcript-ledger/internal/events"
	"github.com/ticketdesk/transcript-ledger/internal/ledger"
	"github.com/ticketdesk/transcript-ledger/internal/store"
	"github.com/ticketdesk/transcript-ledger/internal/transcript"
)

const (
	transcriptChannel = "transcripts"
	ticketBot         = "ticket-bot"
	selfBot           = "ledger-bot"
	staffUser         = "staff-1"
)

type reactionCall struct {
	messageID string
	symbols   []string
}

type fakeChat struct {
	messages  map[string]transcript.Message
	reactions []reactionCall
	fetchErr  error
}

func (f *fakeChat) AddReactions(_ context.Context, _ string, messageID string, symbols []string) error {
	f.reactions = append(f.reactions, reactionCall{messageID: messageID, symbols: symbols})
	return nil
}

func (f *fakeChat) FetchMessage(_ context.Context, _ string, messageID string) (transcript.Message, error) {
	if f.fetchErr != nil {
		return transcript.Message{}, f.fetchErr
	}
	msg, ok := f.messages[messageID]
	if !ok {
		return transcript.Message{}, errors.New("unknown message")
	}
	return msg, nil
}

type harness struct {
	svc       *TicketService
	ledger    *ledger.Ledger
	mem       *store.Memory
	chat      *fakeChat
	published []events.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mem := store.NewMemory([]string{"Timestamp", "Discord ID", "Ticket", "Approval", "Transcript", "Referral"})
	l := ledger.New(ledger.Dependencies{Store: mem})
	chat := &fakeChat{messages: map[string]transcript.Message{}}
	d := events.NewInMemoryDispatcher()
	h := &harness{ledger: l, mem: mem, chat: chat}
	for _, et := range []events.EventType{events.EventTicketLogged, events.EventApprovalSet, events.EventReferralSet} {
		d.Subscribe(et, func(_ context.Context, e events.Event) error {
			h.published = append(h.published, e)
			return nil
		})
	}
	h.svc = NewTicketService(TicketDependencies{
		Parser:     transcript.NewParser(time.UTC),
		Ledger:     l,
		Chat:       chat,
		Dispatcher: d,
		Channels:   Channels{TranscriptChannelID: transcriptChannel, TicketBotID: ticketBot, SelfID: selfBot},
	})
	return h
}

func transcriptMessage(id, number, owner string) transcript.Message {
	return transcript.Message{
		ID:        id,
		ChannelID: transcriptChannel,
		AuthorID:  ticketBot,
		CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Fields: []transcript.Field{
			{Name: "Ticket Owner", Value: "<@" + owner + ">"},
			{Name: "Ticket Name", Value: "closed-" + number},
			{Name: "Panel Name", Value: "apply"},
			{Name: "Direct Transcript", Value: "[Direct Transcript](http://t/" + number + ")"},
		},
	}
}

func (h *harness) post(t *testing.T, msg transcript.Message) Outcome {
	t.Helper()
	h.chat.messages[msg.ID] = msg
	out, err := h.svc.HandleTranscript(context.Background(), msg)
	require.NoError(t, err)
	return out
}

func (h *harness) react(t *testing.T, messageID, symbol string) (Outcome, error) {
	t.Helper()
	return h.svc.HandleReaction(context.Background(), ReactionEvent{
		ChannelID: transcriptChannel,
		MessageID: messageID,
		UserID:    staffUser,
		Symbol:    symbol,
	})
}

func TestHandleTranscriptLogsOnce(t *testing.T) {
	h := newHarness(t)
	msg := transcriptMessage("m1", "0670", "42")

	require.Equal(t, OutcomeLogged, h.post(t, msg))
	require.Equal(t, OutcomeAlreadyLogged, h.post(t, msg))
	require.Equal(t, OutcomeAlreadyLogged, h.post(t, msg))

	require.Equal(t, 1, h.mem.Calls("append"))
	require.Equal(t, []reactionCall{{messageID: "m1", symbols: []string{"✅", "❌", "❕"}}}, h.chat.reactions)
	require.Len(t, h.published, 1)
	require.Equal(t, events.EventTicketLogged, h.published[0].Type)
	require.Equal(t, "0670", h.published[0].TicketNumber)
}

func TestHandleTranscriptIgnoresOtherSources(t *testing.T) {
	h := newHarness(t)

	other := transcriptMessage("m1", "0670", "42")
	other.ChannelID = "general"
	out, err := h.svc.HandleTranscript(context.Background(), other)
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, out)

	impostor := transcriptMessage("m2", "0671", "42")
	impostor.AuthorID = "someone"
	out, err = h.svc.HandleTranscript(context.Background(), impostor)
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, out)

	require.Equal(t, 0, h.mem.Calls("read_column"))
}

func TestHandleTranscriptSkipsMalformed(t *testing.T) {
	h := newHarness(t)
	msg := transcriptMessage("m1", "0670", "42")
	msg.Fields = msg.Fields[:2]

	out, err := h.svc.HandleTranscript(context.Background(), msg)
	require.ErrorIs(t, err, transcript.ErrMalformedTranscript)
	require.Equal(t, OutcomeSkipped, out)
	require.Equal(t, 0, h.mem.Calls("append"))
}

func TestHandleTranscriptStoreFailure(t *testing.T) {
	h := newHarness(t)
	h.mem.Fail(store.ErrStoreUnavailable)

	out, err := h.svc.HandleTranscript(context.Background(), transcriptMessage("m1", "0670", "42"))
	require.ErrorIs(t, err, store.ErrStoreUnavailable)
	require.Equal(t, OutcomeFailed, out)
	require.Empty(t, h.chat.reactions)

	// The next event is handled normally.
	require.Equal(t, OutcomeLogged, h.post(t, transcriptMessage("m1", "0670", "42")))
}

func TestAcceptThenReferralScenario(t *testing.T) {
	h := newHarness(t)
	h.post(t, transcriptMessage("m1", "0670", "42"))

	out, err := h.react(t, "m1", "✅")
	require.NoError(t, err)
	require.Equal(t, OutcomeUpdated, out)
	require.Equal(t, reactionCall{messageID: "m1", symbols: []string{"🟣", "🔵", "🟡"}}, h.chat.reactions[1])

	out, err = h.react(t, "m1", "🟡")
	require.NoError(t, err)
	require.Equal(t, OutcomeUpdated, out)

	all, err := h.ledger.ListAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.TicketRecord{
		Timestamp:        "10/01/2026 12:00:00",
		OwnerID:          "42",
		TicketNumber:     "0670",
		ApprovalStatus:   domain.ApprovalAccepted,
		TranscriptURL:    "http://t/0670",
		ReferralCategory: domain.ReferralOption3,
	}, all[0])

	require.Len(t, h.published, 3)
	require.Equal(t, events.EventApprovalSet, h.published[1].Type)
	require.Equal(t, staffUser, h.published[1].ActorID)
	require.Equal(t, events.EventReferralSet, h.published[2].Type)
}

func TestDenialDoesNotOfferReferrals(t *testing.T) {
	h := newHarness(t)
	h.post(t, transcriptMessage("m1", "0670", "42"))

	_, err := h.react(t, "m1", "❌")
	require.NoError(t, err)
	require.Len(t, h.chat.reactions, 1)

	_, err = h.react(t, "m1", "❕")
	require.NoError(t, err)

	all, err := h.ledger.ListAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.ApprovalIncomplete, all[0].ApprovalStatus)
}

func TestHandleReactionFilters(t *testing.T) {
	h := newHarness(t)
	h.post(t, transcriptMessage("m1", "0670", "42"))
	ctx := context.Background()

	for _, evt := range []ReactionEvent{
		{ChannelID: transcriptChannel, MessageID: "m1", UserID: selfBot, Symbol: "✅"},
		{ChannelID: transcriptChannel, MessageID: "m1", UserID: ticketBot, Symbol: "✅"},
		{ChannelID: "general", MessageID: "m1", UserID: staffUser, Symbol: "✅"},
	} {
		out, err := h.svc.HandleReaction(ctx, evt)
		require.NoError(t, err)
		require.Equal(t, OutcomeIgnored, out)
	}

	out, err := h.react(t, "m1", "👍")
	require.NoError(t, err)
	require.Equal(t, OutcomeUnrecognized, out)

	h.chat.messages["m2"] = transcript.Message{ID: "m2", ChannelID: transcriptChannel, AuthorID: "someone"}
	out, err = h.react(t, "m2", "✅")
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, out)

	require.Equal(t, 0, h.mem.Calls("update"))
}

func TestHandleReactionForUnloggedTicket(t *testing.T) {
	h := newHarness(t)
	h.chat.messages["m9"] = transcriptMessage("m9", "0999", "42")

	out, err := h.react(t, "m9", "✅")
	require.ErrorIs(t, err, ledger.ErrNotFound)
	require.Equal(t, OutcomeFailed, out)
	require.Empty(t, h.chat.reactions)
}

func TestHandleReactionFetchFailure(t *testing.T) {
	h := newHarness(t)
	h.chat.fetchErr = errors.New("gateway down")

	out, err := h.react(t, "m1", "✅")
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, out)
}

func TestSetSelfID(t *testing.T) {
	h := newHarness(t)
	h.post(t, transcriptMessage("m1", "0670", "42"))
	h.svc.SetSelfID("new-self")

	out, err := h.svc.HandleReaction(context.Background(), ReactionEvent{
		ChannelID: transcriptChannel, MessageID: "m1", UserID: "new-self", Symbol: "✅",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, out)
}

type reservedLedger struct {
	*ledger.Ledger
}

func (reservedLedger) TryLogTicket(context.Context, domain.TicketRecord) (ledger.LogResult, error) {
	return ledger.InProgress, nil
}

func TestHandleTranscriptHeldByAnotherWriter(t *testing.T) {
	h := newHarness(t)
	h.svc = NewTicketService(TicketDependencies{
		Parser:   transcript.NewParser(time.UTC),
		Ledger:   reservedLedger{h.ledger},
		Chat:     h.chat,
		Channels: Channels{TranscriptChannelID: transcriptChannel, TicketBotID: ticketBot, SelfID: selfBot},
	})

	require.Equal(t, OutcomeInProgress, h.post(t, transcriptMessage("m1", "0670", "42")))
	require.Empty(t, h.chat.reactions)
	require.Empty(t, h.published)
	require.Equal(t, 0, h.mem.Calls("append"))
}

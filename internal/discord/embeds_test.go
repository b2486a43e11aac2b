package discord

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
	"github.com/ticketdesk/transcript-ledger/internal/reporting"
)

func TestLookupEmbedStatusColours(t *testing.T) {
	owner := Owner{ID: "42", Name: "user#0001"}
	rec := domain.TicketRecord{Timestamp: "10/01/2026 12:00:00", OwnerID: "42", TicketNumber: "0670", TranscriptURL: "http://t/0670"}

	cases := map[domain.ApprovalStatus]struct {
		color int
		label string
	}{
		domain.ApprovalAccepted:   {ColorGreen, "Accepted ✅"},
		domain.ApprovalDenied:     {ColorRed, "Denied ❌"},
		domain.ApprovalIncomplete: {ColorDarkGray, "Pending"},
		"":                        {ColorDarkGray, "Pending"},
	}
	for status, want := range cases {
		rec.ApprovalStatus = status
		embed := LookupEmbed(owner, rec)
		require.Equal(t, want.color, embed.Color, status)
		require.Len(t, embed.Fields, 5)
		require.Equal(t, "Approval Status", embed.Fields[4].Name)
		require.Equal(t, want.label, embed.Fields[4].Value)
	}

	embed := LookupEmbed(owner, rec)
	require.Equal(t, "<@42>", embed.Fields[0].Value)
	require.Equal(t, "0670", embed.Fields[1].Value)
	require.Equal(t, "Date/time(MT)", embed.Fields[2].Name)
	require.Equal(t, "[Direct Transcript](http://t/0670)", embed.Fields[3].Value)
	require.Equal(t, "user#0001", embed.Author.Name)

	require.Nil(t, LookupEmbed(Owner{ID: "42"}, rec).Author)
}

func TestLookupReplies(t *testing.T) {
	owner := Owner{ID: "42"}

	none := LookupReplies(owner, nil)
	require.Len(t, none, 1)
	require.Equal(t, "Could not find any tickets opened by <@42>", none[0].Content)
	require.Empty(t, none[0].Embeds)

	replies := LookupReplies(owner, []domain.TicketRecord{{TicketNumber: "0001"}, {TicketNumber: "0002"}})
	require.Len(t, replies, 2)
	require.Equal(t, "Here are all of the stored tickets opened by <@42>: ", replies[0].Content)
	require.Empty(t, replies[1].Content)
	require.Equal(t, "0002", replies[1].Embeds[0].Fields[1].Value)
}

func TestReferralEmbed(t *testing.T) {
	embed := ReferralEmbed(reporting.ReferralStats{
		Counts: map[domain.ReferralCategory]int{domain.ReferralOption1: 2, domain.ReferralOption2: 0, domain.ReferralOption3: 1},
		Total:  3,
	})
	require.Equal(t, ColorBlue, embed.Color)
	require.Equal(t, "REFERRAL DATA", embed.Fields[0].Name)
	require.Equal(t, "Number of players from Option1: 2\nNumber of players from Option2: 0\nNumber of players from Option3: 1\n\n", embed.Fields[0].Value)
	require.Equal(t, "This data was generated using 3 applications", embed.Fields[1].Value)
}

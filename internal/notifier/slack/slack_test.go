package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/KilvingtonDigital/SmashBoard/internal/club"
	"github.com/KilvingtonDigital/SmashBoard/internal/metrics"
	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	postMessageCalled := false
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func TestFormatRoundLineup(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

	session := &club.Session{Name: "Tuesday Night"}
	round := &scheduler.Round{
		Index: 1,
		Matches: []*scheduler.Match{
			{
				Court:      1,
				Side1:      []string{"p1", "p2"},
				Side2:      []string{"p3", "p4"},
				CourtLevel: "3.0-3.5",
			},
		},
	}
	names := map[string]string{"p1": "Alice", "p2": "Bob", "p3": "Carol", "p4": "Dave"}

	msg := notifier.formatRoundLineup(session, round, names, []string{"p5"})

	// Header, session line, one match, one sitting-out context block.
	require.Len(t, msg.Blocks.BlockSet, 4)

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok)
	assert.Contains(t, header.Text.Text, "Round 2")

	matchBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, matchBlock.Text.Text, "Alice & Bob")
	assert.Contains(t, matchBlock.Text.Text, "Carol & Dave")
	assert.Contains(t, matchBlock.Text.Text, "3.0-3.5")
}

func TestFormatMatchResultNamesWinner(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

	match := &scheduler.Match{
		Court:       1,
		Side1:       []string{"p1", "p2"},
		Side2:       []string{"p3", "p4"},
		Score:       &scheduler.Score{Side1: 6, Side2: 4},
		Winner:      scheduler.WinnerSide1,
		LadderIndex: 0,
	}
	names := map[string]string{"p1": "Alice", "p2": "Bob"}

	msg := notifier.formatMatchResult(match, names)
	require.Len(t, msg.Blocks.BlockSet, 3)

	winnerBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
	require.True(t, ok)
	text, ok := winnerBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Alice & Bob won!")
	assert.Contains(t, text.Text, "Kings of the court")
}

func TestFormatStandingsEmpty(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

	msg := notifier.formatStandings(nil)
	require.Len(t, msg.Blocks.BlockSet, 2)

	section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "No standings yet")
}

func TestFormatStandingsRanks(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

	standings := []club.Standing{
		{EntityID: "p1", Name: "Alice", TotalPoints: 12, Court1Wins: 2, RoundsPlayed: 6},
		{EntityID: "p2", Name: "Bob", TotalPoints: 8, RoundsPlayed: 6, RoundsSatOut: 1},
	}

	msg := notifier.formatStandings(standings)
	require.Len(t, msg.Blocks.BlockSet, 3)

	first, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, first.Text.Text, "1. 🥇 Alice")
	assert.Contains(t, first.Text.Text, "Points: 12")
}

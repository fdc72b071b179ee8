package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/KilvingtonDigital/SmashBoard/internal/club"
	"github.com/KilvingtonDigital/SmashBoard/internal/metrics"
	"github.com/KilvingtonDigital/SmashBoard/internal/notifier"
	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendRoundLineup(session *club.Session, round *scheduler.Round, names map[string]string, sitting []string, dryRun bool) error {
	msg := s.formatRoundLineup(session, round, names, sitting)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendMatchResult(match *scheduler.Match, names map[string]string, dryRun bool) error {
	msg := s.formatMatchResult(match, names)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendStandings(standings []club.Standing, dryRun bool) error {
	msg := s.formatStandings(standings)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatStandingsResponse formats a standings message for a slash command response.
func (s *Notifier) FormatStandingsResponse(standings []club.Standing) (any, error) {
	return s.formatStandings(standings), nil
}

// formatRoundLineup creates the Slack message for a freshly generated round using Block Kit.
func (s *Notifier) formatRoundLineup(session *club.Session, round *scheduler.Round, names map[string]string, sitting []string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🎾 Round %d is up! 🎾", round.Index+1), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if session != nil && session.Name != "" {
		sessionText := fmt.Sprintf("Session: %s", session.Name)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", sessionText, true, false), nil, nil))
	}

	for _, match := range round.Matches {
		courtLabel := fmt.Sprintf("Court %d", match.Court)
		if match.CourtLevel != "" {
			courtLabel = fmt.Sprintf("%s (%s)", courtLabel, match.CourtLevel)
		}
		if match.LadderIndex == 0 {
			courtLabel = "👑 " + courtLabel
		}
		matchText := fmt.Sprintf("%s\n%s  vs  %s", courtLabel, sideNames(match.Side1, names), sideNames(match.Side2, names))
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", matchText, true, false), nil, nil))
	}

	if len(sitting) > 0 {
		var sittingNames []string
		for _, id := range sitting {
			sittingNames = append(sittingNames, displayName(id, names))
		}
		sittingText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("Sitting out: %s", strings.Join(sittingNames, ", ")), true, false)
		blocks = append(blocks, slack.NewContextBlock("", sittingText))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatMatchResult creates the Slack message for a completed match using Block Kit.
func (s *Notifier) formatMatchResult(match *scheduler.Match, names map[string]string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🎾 Match finished! 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	side1 := sideNames(match.Side1, names)
	side2 := sideNames(match.Side2, names)

	resultText := fmt.Sprintf("Court %d\n%s  vs  %s", match.Court, side1, side2)
	if match.Score != nil {
		resultText = fmt.Sprintf("%s\nScore: %d - %d", resultText, match.Score.Side1, match.Score.Side2)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), nil, nil))

	var winnerText string
	switch match.Winner {
	case scheduler.WinnerSide1:
		winnerText = fmt.Sprintf("%s won! 🏆", side1)
	case scheduler.WinnerSide2:
		winnerText = fmt.Sprintf("%s won! 🏆", side2)
	}
	if winnerText != "" {
		if match.LadderIndex == 0 {
			winnerText += " Kings of the court!"
		}
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", winnerText, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatStandings creates a Slack message to display the session standings.
func (s *Notifier) formatStandings(standings []club.Standing) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Session Standings 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(standings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No standings yet. Go play some rounds!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, standing := range standings {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		entryText := fmt.Sprintf("%d. %s %s\n> Points: %d | Court 1 wins: %d | Played: %d | Sat out: %d",
			rank,
			medal,
			standing.Name,
			standing.TotalPoints,
			standing.Court1Wins,
			standing.RoundsPlayed,
			standing.RoundsSatOut,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", entryText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

func sideNames(side []string, names map[string]string) string {
	var out []string
	for _, id := range side {
		out = append(out, displayName(id, names))
	}
	return strings.Join(out, " & ")
}

func displayName(id string, names map[string]string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

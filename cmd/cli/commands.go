package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var (
	sessionID  string
	matchID    string
	scoreSide1 int
	scoreSide2 int
	winner     string
	importDays int
	notify     bool
)

func init() {
	generateCmd.Flags().StringVar(&sessionID, "session", "", "The session to generate a round for")
	generateCmd.MarkFlagRequired("session")

	roundsCmd.Flags().StringVar(&sessionID, "session", "", "The session to list rounds for")
	roundsCmd.MarkFlagRequired("session")

	standingsCmd.Flags().StringVar(&sessionID, "session", "", "The session to show standings for")
	standingsCmd.Flags().BoolVar(&notify, "notify", false, "Also post the standings to the channel")
	standingsCmd.MarkFlagRequired("session")

	completeCmd.Flags().StringVar(&matchID, "match", "", "The match to complete")
	completeCmd.Flags().IntVar(&scoreSide1, "score1", 0, "Games won by side 1")
	completeCmd.Flags().IntVar(&scoreSide2, "score2", 0, "Games won by side 2")
	completeCmd.Flags().StringVar(&winner, "winner", "", "The winning side (side1 or side2)")
	completeCmd.MarkFlagRequired("match")
	completeCmd.MarkFlagRequired("winner")

	importCmd.Flags().IntVar(&importDays, "days", 30, "How many days of matches to scan")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(roundsCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health", nil)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players in the club store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players", nil)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import players and ratings from Playtomic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players/import", url.Values{"days": {fmt.Sprint(importDays)}})
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the next round for a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/round/generate", url.Values{"sessionID": {sessionID}})
	},
}

var roundsCmd = &cobra.Command{
	Use:   "rounds",
	Short: "List the rounds of a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/session/rounds", url.Values{"sessionID": {sessionID}})
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Record the result of a match",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := fmt.Sprintf(`{"match_id":%q,"score_side1":%d,"score_side2":%d,"winner":%q}`,
			matchID, scoreSide1, scoreSide2, winner)
		return performPostRequest("/match/complete", payload)
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Show the standings of a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{"sessionID": {sessionID}}
		if notify {
			params.Set("notify", "true")
		}
		return performGetRequest("/session/standings", params)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics/summary", nil)
	},
}

func buildURL(endpoint string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	if dryRun {
		params.Set("dry_run", "true")
	}
	u := host + endpoint
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

func performGetRequest(endpoint string, params url.Values) error {
	u := buildURL(endpoint, params)
	fmt.Printf("Making request to %s\n", u)

	resp, err := http.Get(u)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, payload string) error {
	u := buildURL(endpoint, nil)
	fmt.Printf("Making request to %s\n", u)

	resp, err := http.Post(u, "application/json", strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}

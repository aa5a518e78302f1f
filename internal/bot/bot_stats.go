package bot

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"poro/internal/back"

	"github.com/bwmarrin/discordgo"
	"github.com/wcharczuk/go-chart"
)

func (bot *Bot) cmdLeaderboard(m *discordgo.Message, _ []string, w io.Writer) error {
	settings, err := bot.back.GetGuildSettings(m.GuildID)
	if err != nil {
		return err
	}
	limit := settings.LeaderboardSize
	if limit <= 0 {
		limit = 10
	}

	board, err := bot.back.GetLeaderboard(m.GuildID, limit)
	if err != nil {
		return err
	}
	if len(board) == 0 {
		fmt.Fprint(w, "Nobody registered yet, be the first with `!register`.")
		return nil
	}

	fmt.Fprint(w, "```\n")
	for k, v := range board {
		fmt.Fprintf(w, "%2d. %-20s %4d MMR  %d-%d\n", k+1, v.PlayerName, v.Rating, v.Wins, v.Losses)
	}
	fmt.Fprint(w, "```")

	return nil
}

func (bot *Bot) cmdAccuracy(m *discordgo.Message, _ []string, w io.Writer) error {
	report, err := bot.back.GetCalibrationReport(m.GuildID)
	if err != nil {
		return err
	}
	if report.MatchesAnalyzed == 0 {
		fmt.Fprint(w, "No matches on record, nothing to analyze.")
		return nil
	}

	fmt.Fprintf(w, "Analyzed %d matches.\n", report.MatchesAnalyzed)
	fmt.Fprintf(
		w, "The favored team won %.0f%% of the time (%.0f%% over the last %d matches).\n",
		report.OverallAccuracy, report.RecentAccuracy, report.RecentMatches,
	)
	fmt.Fprintf(
		w, "Average swing went from ±%.1f to ±%.1f MMR, %s\n",
		report.AvgChangeFirstHalf, report.AvgChangeSecondHalf,
		stabilizationVerdict(report),
	)

	fmt.Fprint(w, "```\nGap      Matches  Expected  Actual\n")
	for _, b := range report.Buckets {
		if b.Matches == 0 {
			continue
		}
		fmt.Fprintf(w, "%-8s %7d  %7.0f%%  %5.0f%%\n", b.Range, b.Matches, b.ExpectedWinRate, b.ActualWinRate)
	}
	fmt.Fprint(w, "```")

	if cw, ok := w.(*channelWriter); ok && len(report.Stabilization) > 1 {
		png, err := renderStabilizationPNG(report)
		if err != nil {
			// The text report stands on its own, don't fail over a graph.
			log.Printf("error: unable to render stabilization chart: %s", err)
			return nil
		}
		cw.addFile("stabilization.png", "image/png", png)
	}

	return nil
}

func stabilizationVerdict(report back.CalibrationReport) string {
	if report.AvgChangeSecondHalf < report.AvgChangeFirstHalf {
		return "ratings are settling."
	}

	return "ratings have not settled yet."
}

func renderStabilizationPNG(report back.CalibrationReport) (io.Reader, error) {
	xs := make([]float64, 0, len(report.Stabilization))
	ys := make([]float64, 0, len(report.Stabilization))
	for _, v := range report.Stabilization {
		xs = append(xs, float64(v.MatchNumber))
		ys = append(ys, float64(v.ChangeMagnitude))
	}

	graph := chart.Chart{
		Height: 300,
		Width:  600,
		XAxis:  chart.XAxis{Name: "match"},
		YAxis:  chart.YAxis{Name: "MMR swing"},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}

	return &buf, nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mcoot/multitetris/internal/api/response"
	"github.com/mcoot/multitetris/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

// printJSON writes one compact JSON document per line so streamed output
// can be consumed line by line
func (o *Output) printJSON(data any) {
	_ = json.NewEncoder(o.w).Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case response.RoomList:
		o.printRooms(v)
	case response.Dashboard:
		o.printDashboard(v)
	case response.Leaderboard:
		o.printLeaderboard(v.Players)
	case response.RecentSessions:
		o.printSessions(v.Sessions)
	case response.PlayerStats:
		o.printPlayerStats(v)
	case RankingUpdate:
		o.printRankingUpdate(v)
	case PlayResult:
		o.printPlayResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// RankingUpdate is one live ranking received while watching a room
type RankingUpdate struct {
	Room       string               `json:"room"`
	ReceivedAt time.Time            `json:"received_at"`
	TopPlayers []model.RankedPlayer `json:"top_players"`
	AllPlayers []model.RankedPlayer `json:"all_players"`
}

// PlayResult summarises a bot game
type PlayResult struct {
	Room     string `json:"room"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Strategy string `json:"strategy"`
	Score    int    `json:"score"`
	Level    int    `json:"level"`
	Lines    int    `json:"lines"`
	Status   string `json:"status"`
}

func (o *Output) printRooms(l response.RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Fprintln(o.w, "No active rooms")
		return
	}
	fmt.Fprintf(o.w, "%-16s %11s %7s %s\n", "ROOM", "CONNECTIONS", "PLAYERS", "GRAVITY")
	for _, r := range l.Rooms {
		fmt.Fprintf(o.w, "%-16s %11d %7d %s\n", r.Code, r.Connections, r.Players, onOff(r.GravityEnabled))
	}
}

func (o *Output) printDashboard(d response.Dashboard) {
	fmt.Fprintf(o.w, "Room: %s\n", d.Room)
	fmt.Fprintf(o.w, "\nLive (%d players):\n", len(d.AllPlayers))
	for i, p := range d.AllPlayers {
		fmt.Fprintf(o.w, "  %2d. %-24s %8d  L%-3d %4d lines  %s\n", i+1, p.Name, p.Score, p.Level, p.Lines, p.Status)
	}
	if len(d.TopPlayersAllTime) > 0 {
		fmt.Fprintln(o.w, "\nAll-time:")
		o.printLeaderboard(d.TopPlayersAllTime)
	}
	if len(d.RecentSessions) > 0 {
		fmt.Fprintln(o.w, "\nRecent games:")
		o.printSessions(d.RecentSessions)
	}
}

func (o *Output) printLeaderboard(players []response.PlayerStats) {
	if len(players) == 0 {
		fmt.Fprintln(o.w, "No players recorded")
		return
	}
	for i, p := range players {
		fmt.Fprintf(o.w, "  %2d. %-24s %8d  %3d games  best level %d\n", i+1, p.Name, p.HighScore, p.TotalGames, p.HighestLevel)
	}
}

func (o *Output) printSessions(sessions []response.GameSession) {
	if len(sessions) == 0 {
		fmt.Fprintln(o.w, "No games recorded")
		return
	}
	for _, s := range sessions {
		fmt.Fprintf(o.w, "  %s  %-24s %8d  L%-3d %4d lines  %s\n",
			s.EndedAt.Format("2006-01-02 15:04"), s.PlayerName, s.Score, s.Level, s.Lines,
			time.Duration(s.Duration)*time.Second)
	}
}

func (o *Output) printPlayerStats(p response.PlayerStats) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(o.w, "High score: %d\n", p.HighScore)
	fmt.Fprintf(o.w, "Games: %d\n", p.TotalGames)
	fmt.Fprintf(o.w, "Lines: %d\n", p.TotalLines)
	fmt.Fprintf(o.w, "Highest level: %d\n", p.HighestLevel)
	fmt.Fprintf(o.w, "First played: %s\n", p.FirstPlayed.Format(time.RFC3339))
	fmt.Fprintf(o.w, "Last played: %s\n", p.LastPlayed.Format(time.RFC3339))
}

func (o *Output) printRankingUpdate(u RankingUpdate) {
	parts := make([]string, 0, len(u.AllPlayers))
	for _, p := range u.AllPlayers {
		parts = append(parts, fmt.Sprintf("%s %d", p.Name, p.Score))
	}
	line := strings.Join(parts, " | ")
	if line == "" {
		line = "(no players)"
	}
	fmt.Fprintf(o.w, "[%s] %s: %s\n", u.ReceivedAt.Format("15:04:05"), u.Room, line)
}

func (o *Output) printPlayResult(r PlayResult) {
	fmt.Fprintf(o.w, "Player: %s (%s) in room %s\n", r.Name, r.PlayerID, r.Room)
	fmt.Fprintf(o.w, "Strategy: %s\n", r.Strategy)
	fmt.Fprintf(o.w, "Score: %d  Level: %d  Lines: %d\n", r.Score, r.Level, r.Lines)
	fmt.Fprintf(o.w, "Status: %s\n", r.Status)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

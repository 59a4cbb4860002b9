// Package leaderboard serves the mocked standings shown on the leaderboard
// page. There is no server-side truth to rank against, so the entries are
// fixed.
package leaderboard

// Entry is one ranked simulated trader.
type Entry struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	ReturnPercentage float64 `json:"returnPercentage"`
	TotalTrades      int     `json:"totalTrades"`
	Rank             int     `json:"rank"`
}

// Standings returns the mock leaderboard, already ordered by rank.
func Standings() []Entry {
	return []Entry{
		{ID: "1", Name: "Emma Johnson", ReturnPercentage: 32.5, TotalTrades: 87, Rank: 1},
		{ID: "2", Name: "Michael Chen", ReturnPercentage: 28.7, TotalTrades: 132, Rank: 2},
		{ID: "3", Name: "Sophia Rodriguez", ReturnPercentage: 24.3, TotalTrades: 65, Rank: 3},
		{ID: "4", Name: "James Wilson", ReturnPercentage: 21.9, TotalTrades: 104, Rank: 4},
		{ID: "5", Name: "Olivia Kim", ReturnPercentage: 19.8, TotalTrades: 91, Rank: 5},
		{ID: "6", Name: "William Davis", ReturnPercentage: 18.4, TotalTrades: 76, Rank: 6},
		{ID: "7", Name: "Isabella Martinez", ReturnPercentage: 17.2, TotalTrades: 113, Rank: 7},
		{ID: "8", Name: "Alexander Lee", ReturnPercentage: 15.9, TotalTrades: 58, Rank: 8},
		{ID: "9", Name: "Mia Thompson", ReturnPercentage: 14.6, TotalTrades: 97, Rank: 9},
		{ID: "10", Name: "Ethan Brown", ReturnPercentage: 13.1, TotalTrades: 82, Rank: 10},
	}
}

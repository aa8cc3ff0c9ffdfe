package drill

import "fmt"

// VerifyLeaderboard checks the read-side invariants of a fetched table:
// sorted descending by total, no more than maxEntries rows, totals within
// the achievable range, and no duplicate display names among drill users.
func VerifyLeaderboard(rows []LeaderboardRow, maxEntries, maxTotal int) error {
	if len(rows) > maxEntries {
		return fmt.Errorf("leaderboard has %d entries, cap is %d", len(rows), maxEntries)
	}
	seen := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		if i > 0 && rows[i-1].TotalScore < row.TotalScore {
			return fmt.Errorf("leaderboard out of order at %d: %d < %d",
				i, rows[i-1].TotalScore, row.TotalScore)
		}
		if row.TotalScore < 0 || row.TotalScore > maxTotal {
			return fmt.Errorf("entry %q has impossible total %d", row.Name, row.TotalScore)
		}
		if _, dup := seen[row.Name]; dup {
			return fmt.Errorf("duplicate entry for %q", row.Name)
		}
		seen[row.Name] = struct{}{}
	}
	return nil
}

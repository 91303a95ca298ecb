package server

import (
	"cmp"
	"slices"
)

// TopScoreEntry is one live session on the leaderboard.
type TopScoreEntry struct {
	Username string
	Score    int
	Level    int
	clientID int // Deterministic tie-break when scores are equal
}

// Snapshot is an immutable view of the hub for rendering.
type Snapshot struct {
	Players   int
	TopScores []TopScoreEntry // Best scores among connected sessions
}

// topScores ranks handles by score, highest first, keeping at most n.
func topScores(handles map[int]*Handle, n int, buf []TopScoreEntry) []TopScoreEntry {
	buf = buf[:0]
	for _, h := range handles {
		if h.score == 0 {
			continue
		}
		buf = append(buf, TopScoreEntry{
			Username: h.Username,
			Score:    h.score,
			Level:    h.level,
			clientID: h.ID,
		})
	}
	slices.SortFunc(buf, func(a, b TopScoreEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.clientID, b.clientID)
	})
	if len(buf) > n {
		buf = buf[:n]
	}
	return buf
}

// levels.go — Log level canonicalization and severity ranking.
package parse

import (
	"fmt"
	"strings"
)

// Severity ranks. SERVICE shares INFO's rank: service-lifecycle lines are
// informational but keep their own label in signatures.
const (
	RankDebug    = 0
	RankInfo     = 1
	RankWarning  = 2
	RankError    = 3
	RankCritical = 4
)

var levelRanks = map[string]int{
	"CRITICAL": RankCritical,
	"ERROR":    RankError,
	"WARNING":  RankWarning,
	"INFO":     RankInfo,
	"SERVICE":  RankInfo,
	"DEBUG":    RankDebug,
}

// LevelRank returns the severity rank for a level token, canonicalized to
// uppercase. The second return is false for unrecognized levels.
func LevelRank(level string) (int, bool) {
	rank, ok := levelRanks[strings.ToUpper(strings.TrimSpace(level))]
	return rank, ok
}

// ParseMinSeverity converts a configured severity floor name into a rank.
func ParseMinSeverity(level string) (int, error) {
	rank, ok := LevelRank(level)
	if !ok {
		return 0, fmt.Errorf("unknown severity level %q", level)
	}
	return rank, nil
}

package model

// Level is one row of the leveling table
type Level struct {
	Number    int
	MinPoints int
	Title     string
}

// GameStats is derived from a User on demand and never stored
type GameStats struct {
	TotalScore        int
	Level             int
	Rank              string
	PointsToNextLevel int
	ModulesCompleted  int
	ModulesTotal      int
	ProgressPercent   int
	BadgesEarned      int
	Streak            int
}

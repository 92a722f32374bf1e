package models

// SportConfig holds the rules a match is played under.
// Implemented only by *CricketConfig and *FootballConfig.
type SportConfig interface {
	Sport() Sport
	isSportConfig()
}

// CricketConfig holds cricket match rules.
type CricketConfig struct {
	OversPerInnings int `json:"overs_per_innings" yaml:"overs_per_innings"`
	BallsPerOver    int `json:"balls_per_over" yaml:"balls_per_over"`
	MaxInnings      int `json:"max_innings" yaml:"max_innings"`
	PlayersPerSide  int `json:"players_per_side" yaml:"players_per_side"`
}

// FootballConfig holds football match rules.
type FootballConfig struct {
	HalfLengthMinutes int `json:"half_length_minutes" yaml:"half_length_minutes"`
	PlayersPerSide    int `json:"players_per_side" yaml:"players_per_side"`
	MaxSubstitutions  int `json:"max_substitutions" yaml:"max_substitutions"`
}

func (*CricketConfig) Sport() Sport   { return SportCricket }
func (*CricketConfig) isSportConfig() {}

func (*FootballConfig) Sport() Sport   { return SportFootball }
func (*FootballConfig) isSportConfig() {}

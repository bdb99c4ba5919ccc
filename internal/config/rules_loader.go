package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MatchRules are the tunable numbers of the scoring rules. Defaults match
// standard-style kabaddi; a tournament can override them in a YAML file
// without touching the engine.
type MatchRules struct {
	HalfMinutes      int `yaml:"half_minutes"`
	TimeoutsPerHalf  int `yaml:"timeouts_per_half"`
	SubsPerBreak     int `yaml:"subs_per_break"`
	DoOrDieThreshold int `yaml:"do_or_die_threshold"` // empty raids tolerated before do-or-die
	SuperRaidPoints  int `yaml:"super_raid_points"`   // points-in-raid for a super raid
	LonaBonus        int `yaml:"lona_bonus"`          // team points for wiping the opposing side
	SuperTackleRaw   int `yaml:"super_tackle_raw"`    // tackle raw points that count a super tackle
}

func DefaultMatchRules() MatchRules {
	return MatchRules{
		HalfMinutes:      20,
		TimeoutsPerHalf:  2,
		SubsPerBreak:     2,
		DoOrDieThreshold: 2,
		SuperRaidPoints:  3,
		LonaBonus:        2,
		SuperTackleRaw:   2,
	}
}

// LoadMatchRules reads rules from a YAML file, starting from defaults so a
// partial file overrides only what it names. A missing file is not an error.
func LoadMatchRules(path string) (MatchRules, error) {
	rules := DefaultMatchRules()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}
		return MatchRules{}, fmt.Errorf("read match rules: %w", err)
	}

	if err := yaml.Unmarshal(data, &rules); err != nil {
		return MatchRules{}, fmt.Errorf("parse match rules: %w", err)
	}

	if rules.HalfMinutes <= 0 {
		return MatchRules{}, fmt.Errorf("match rules: half_minutes must be positive, got %d", rules.HalfMinutes)
	}
	if rules.DoOrDieThreshold < 1 {
		return MatchRules{}, fmt.Errorf("match rules: do_or_die_threshold must be >= 1, got %d", rules.DoOrDieThreshold)
	}

	return rules, nil
}

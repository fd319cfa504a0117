package datagen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tiers sizes the unlabeled variants of one pattern.
type Tiers struct {
	Tier1 int `yaml:"tier1" json:"tier1"`
	Tier2 int `yaml:"tier2" json:"tier2"`
	Tier3 int `yaml:"tier3" json:"tier3"`
}

func (t Tiers) Total() int { return t.Tier1 + t.Tier2 + t.Tier3 }

// PatternCounts holds one count per fraud pattern.
type PatternCounts struct {
	MedicalMill       int `yaml:"medical_mill" json:"medical_mill"`
	Kickback          int `yaml:"kickback" json:"kickback"`
	Staged            int `yaml:"staged" json:"staged"`
	Phantom           int `yaml:"phantom" json:"phantom"`
	AdjusterCollusion int `yaml:"adjuster_collusion" json:"adjuster_collusion"`
}

type ImplicitTiers struct {
	MedicalMill       Tiers `yaml:"medical_mill" json:"medical_mill"`
	Kickback          Tiers `yaml:"kickback" json:"kickback"`
	Staged            Tiers `yaml:"staged" json:"staged"`
	Phantom           Tiers `yaml:"phantom" json:"phantom"`
	AdjusterCollusion Tiers `yaml:"adjuster_collusion" json:"adjuster_collusion"`
}

type NearMiss struct {
	HighVolumeProviders int `yaml:"high_volume_providers" json:"high_volume_providers"`
	RepeatReferrals     int `yaml:"repeat_referrals" json:"repeat_referrals"`
	RepeatWitnesses     int `yaml:"repeat_witnesses" json:"repeat_witnesses"`
}

// Profile describes the size and mix of a generated dataset.
type Profile struct {
	Adjusters        int           `yaml:"adjusters" json:"adjusters"`
	LegitimateClaims int           `yaml:"legitimate_claims" json:"legitimate_claims"`
	Explicit         PatternCounts `yaml:"explicit" json:"explicit"`
	Implicit         ImplicitTiers `yaml:"implicit" json:"implicit"`
	IncludeNearMiss  bool          `yaml:"include_near_miss" json:"include_near_miss"`
	NearMiss         NearMiss      `yaml:"near_miss" json:"near_miss"`
}

// DefaultProfile is the standard demo dataset.
func DefaultProfile() Profile {
	return Profile{
		Adjusters:        20,
		LegitimateClaims: 150,
		Explicit: PatternCounts{
			MedicalMill:       3,
			Kickback:          3,
			Staged:            2,
			Phantom:           3,
			AdjusterCollusion: 2,
		},
		Implicit: ImplicitTiers{
			MedicalMill:       Tiers{Tier1: 2, Tier2: 2, Tier3: 1},
			Kickback:          Tiers{Tier1: 2, Tier2: 1, Tier3: 1},
			Staged:            Tiers{Tier1: 2, Tier2: 1, Tier3: 1},
			Phantom:           Tiers{Tier1: 2, Tier2: 1, Tier3: 1},
			AdjusterCollusion: Tiers{Tier1: 2, Tier2: 1, Tier3: 1},
		},
		IncludeNearMiss: true,
		NearMiss: NearMiss{
			HighVolumeProviders: 3,
			RepeatReferrals:     2,
			RepeatWitnesses:     3,
		},
	}
}

// SpreadTiers splits a single count 40/40/20 across the tiers, at least one
// each in tier 1 and tier 2.
func SpreadTiers(count int) Tiers {
	if count <= 0 {
		return Tiers{}
	}
	t1 := max(1, count*4/10)
	t2 := max(1, count*4/10)
	return Tiers{Tier1: t1, Tier2: t2, Tier3: max(0, count-t1-t2)}
}

// ParseProfile reads a YAML (or JSON) profile; omitted fields keep their defaults.
func ParseProfile(data []byte) (Profile, error) {
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	return ParseProfile(data)
}

func (p Profile) Validate() error {
	if p.Adjusters < 1 {
		return fmt.Errorf("profile: adjusters must be >= 1, got %d", p.Adjusters)
	}
	counts := map[string]int{
		"legitimate_claims":               p.LegitimateClaims,
		"explicit.medical_mill":           p.Explicit.MedicalMill,
		"explicit.kickback":               p.Explicit.Kickback,
		"explicit.staged":                 p.Explicit.Staged,
		"explicit.phantom":                p.Explicit.Phantom,
		"explicit.adjuster_collusion":     p.Explicit.AdjusterCollusion,
		"near_miss.high_volume_providers": p.NearMiss.HighVolumeProviders,
		"near_miss.repeat_referrals":      p.NearMiss.RepeatReferrals,
		"near_miss.repeat_witnesses":      p.NearMiss.RepeatWitnesses,
	}
	for name, t := range map[string]Tiers{
		"implicit.medical_mill":       p.Implicit.MedicalMill,
		"implicit.kickback":           p.Implicit.Kickback,
		"implicit.staged":             p.Implicit.Staged,
		"implicit.phantom":            p.Implicit.Phantom,
		"implicit.adjuster_collusion": p.Implicit.AdjusterCollusion,
	} {
		counts[name+".tier1"] = t.Tier1
		counts[name+".tier2"] = t.Tier2
		counts[name+".tier3"] = t.Tier3
	}
	for name, v := range counts {
		if v < 0 {
			return fmt.Errorf("profile: %s must be >= 0, got %d", name, v)
		}
	}
	return nil
}

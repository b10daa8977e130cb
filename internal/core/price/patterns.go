package price

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Type classifies what kind of offer a matched price belongs to.
type Type string

const (
	TypeIntroductory Type = "introductory"
	TypeTrial        Type = "trial"
	TypeCampaign     Type = "campaign"
	TypeSubscription Type = "subscription"
	TypeRegular      Type = "regular"
	TypeGeneric      Type = "generic"
)

// Rule ties a price pattern to its type and static priority. One shared
// table drives both the tagged-document pass and the plain-text pass.
type Rule struct {
	Type     Type
	Priority int
	re       *regexp.Regexp
}

// amount captures a yen figure with optional currency mark and separators.
const amount = `[¥￥]?\s*([0-9][0-9,]*)\s*円?`

func labeled(label string, t Type, priority int) Rule {
	// Up to a short run of non-digit filler between label and figure:
	// markup remnants, colons, full-width spaces.
	return Rule{Type: t, Priority: priority, re: regexp.MustCompile(label + `[^0-9¥￥]{0,20}` + amount)}
}

// Table order mirrors how Japanese LPs mark up offers: introductory labels
// are the strongest campaign signal, bare currency marks the weakest.
var defaultRules = []Rule{
	labeled(`初回限定`, TypeIntroductory, 100),
	labeled(`初回特別価格`, TypeIntroductory, 99),
	labeled(`初回のみ`, TypeIntroductory, 98),
	labeled(`初回`, TypeIntroductory, 97),

	labeled(`お試し価格`, TypeTrial, 90),
	labeled(`トライアル価格`, TypeTrial, 89),
	labeled(`モニター価格`, TypeTrial, 88),

	labeled(`今だけ`, TypeCampaign, 80),
	labeled(`期間限定`, TypeCampaign, 79),
	labeled(`特別価格`, TypeCampaign, 78),

	labeled(`定期初回`, TypeSubscription, 70),
	labeled(`定期便`, TypeSubscription, 69),

	labeled(`通常価格`, TypeRegular, 50),
	labeled(`定価`, TypeRegular, 49),
	labeled(`本体価格`, TypeRegular, 48),

	{Type: TypeGeneric, Priority: 10, re: regexp.MustCompile(`[¥￥]\s*([0-9][0-9,]*)`)},
	{Type: TypeGeneric, Priority: 9, re: regexp.MustCompile(`([0-9][0-9,]{2,})\s*円`)},
}

// ContextBonus adds points when a keyword appears near the match.
type ContextBonus struct {
	Pattern string `yaml:"pattern"`
	Bonus   int    `yaml:"bonus"`
	re      *regexp.Regexp
}

// PositionBand adds points for matches early in the document, where the
// first view of an LP usually carries the offer.
type PositionBand struct {
	MaxOffset int `yaml:"max_offset"`
	Bonus     int `yaml:"bonus"`
}

// Weights are the tuning constants of candidate scoring. The relative
// order of type bases is part of the contract; the exact numbers are not,
// and can be overridden from a YAML file.
type Weights struct {
	TypeBase         map[Type]int   `yaml:"type_base"`
	PositionBands    []PositionBand `yaml:"position_bands"`
	ContextBonuses   []ContextBonus `yaml:"context_bonuses"`
	PlainTextPenalty int            `yaml:"plain_text_penalty"`
}

func DefaultWeights() Weights {
	return Weights{
		TypeBase: map[Type]int{
			TypeIntroductory: 100,
			TypeTrial:        90,
			TypeCampaign:     80,
			TypeSubscription: 70,
			TypeRegular:      50,
			TypeGeneric:      10,
		},
		PositionBands: []PositionBand{
			{MaxOffset: 1000, Bonus: 50},
			{MaxOffset: 5000, Bonus: 30},
			{MaxOffset: 10000, Bonus: 10},
		},
		ContextBonuses: []ContextBonus{
			{Pattern: `[%％]OFF`, Bonus: 25},
			{Pattern: `限定`, Bonus: 20},
			{Pattern: `今だけ`, Bonus: 15},
			{Pattern: `[0-9０-９]+名`, Bonus: 10},
		},
		PlainTextPenalty: 5,
	}
}

// LoadWeights reads YAML overrides on top of the defaults. Only the keys
// present in the file are replaced.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read weights file: %w", err)
	}
	var override Weights
	if err := yaml.Unmarshal(b, &override); err != nil {
		return w, fmt.Errorf("parse weights file: %w", err)
	}
	if len(override.TypeBase) > 0 {
		for t, v := range override.TypeBase {
			w.TypeBase[t] = v
		}
	}
	if len(override.PositionBands) > 0 {
		w.PositionBands = override.PositionBands
	}
	if len(override.ContextBonuses) > 0 {
		w.ContextBonuses = override.ContextBonuses
	}
	if override.PlainTextPenalty != 0 {
		w.PlainTextPenalty = override.PlainTextPenalty
	}
	return w, nil
}

func (w *Weights) compile() {
	for i := range w.ContextBonuses {
		if w.ContextBonuses[i].re == nil {
			w.ContextBonuses[i].re = regexp.MustCompile(w.ContextBonuses[i].Pattern)
		}
	}
}

func (w *Weights) positionBonus(offset int) int {
	for _, band := range w.PositionBands {
		if offset < band.MaxOffset {
			return band.Bonus
		}
	}
	return 0
}

func (w *Weights) contextBonus(context string) int {
	bonus := 0
	for _, cb := range w.ContextBonuses {
		if cb.re != nil && cb.re.MatchString(context) {
			bonus += cb.Bonus
		}
	}
	return bonus
}

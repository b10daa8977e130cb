package price

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"lplens/internal/logger"
	"lplens/internal/utils/htmltext"
)

// Candidate is one price figure found in a document.
type Candidate struct {
	Type     Type   `json:"type"`
	Amount   int    `json:"amount"`
	Text     string `json:"text"`
	Context  string `json:"context,omitempty"`
	Position int    `json:"position"`
	Priority int    `json:"priority"`
	Score    int    `json:"score"`
}

const (
	contextWindow   = 40
	maxMatchPerRule = 50
)

// Extractor scans documents against the shared pattern table and scores
// every candidate it finds.
type Extractor struct {
	log     *logger.Logger
	rules   []Rule
	weights Weights
}

func NewExtractor(w Weights) *Extractor {
	w.compile()
	return &Extractor{log: logger.New("PriceExtractor"), rules: defaultRules, weights: w}
}

// Extract scans the tagged document first. Only when that yields nothing
// does it rescan the plain-text rendering, at a small priority penalty,
// since plain text loses the positional structure the scoring relies on.
func (e *Extractor) Extract(html, plain string) []Candidate {
	cands := e.scan(html, 0)
	if len(cands) == 0 && plain != "" {
		e.log.LogDebugf("no tagged-document candidates, rescanning plain text")
		cands = e.scan(plain, e.weights.PlainTextPenalty)
	}
	cands = Dedupe(cands)
	sortCandidates(cands)
	return cands
}

func (e *Extractor) scan(corpus string, penalty int) []Candidate {
	var out []Candidate
	for _, rule := range e.rules {
		matches := rule.re.FindAllStringSubmatchIndex(corpus, maxMatchPerRule)
		for _, loc := range matches {
			amt, ok := parseAmount(corpus[loc[2]:loc[3]])
			if !ok {
				continue
			}
			start, end := loc[0], loc[1]
			ctxStart := start - contextWindow
			if ctxStart < 0 {
				ctxStart = 0
			}
			ctxEnd := end + contextWindow
			if ctxEnd > len(corpus) {
				ctxEnd = len(corpus)
			}
			context := htmltext.StripTags(corpus[ctxStart:ctxEnd])

			c := Candidate{
				Type:     rule.Type,
				Amount:   amt,
				Text:     htmltext.StripTags(corpus[start:end]),
				Context:  context,
				Position: start,
				Priority: rule.Priority - penalty,
			}
			c.Score = e.weights.TypeBase[c.Type] + e.weights.positionBonus(c.Position) + e.weights.contextBonus(context) - penalty
			out = append(out, c)
		}
	}
	return out
}

// parseAmount turns a matched figure into yen. Currency marks and
// thousands separators are stripped; anything non-positive is rejected.
func parseAmount(s string) (int, bool) {
	s = strings.NewReplacer("¥", "", "￥", "", ",", "", " ", "", "　", "").Replace(s)
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Dedupe keeps the first candidate for each (amount, type) pair. Running
// it twice changes nothing.
func Dedupe(cands []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		key := fmt.Sprintf("%d:%s", c.Amount, c.Type)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func sortCandidates(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Position < cands[j].Position
	})
}

// Selection is the chosen campaign/regular pair plus its rendering.
type Selection struct {
	Campaign *Candidate `json:"campaign,omitempty"`
	Regular  *Candidate `json:"regular,omitempty"`
	Discount int        `json:"discount,omitempty"`
	Display  string     `json:"display,omitempty"`
}

func isCampaignType(t Type) bool {
	switch t {
	case TypeIntroductory, TypeTrial, TypeCampaign, TypeSubscription:
		return true
	}
	return false
}

// Select picks the best campaign-flavored candidate and the best regular
// one from a scored list, swapping the pair when the "campaign" figure is
// the higher of the two. LPs frequently put the struck-through regular
// price inside campaign markup, which is how that inversion happens.
func Select(cands []Candidate) Selection {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sortCandidates(sorted)

	var campaign, regular *Candidate
	for i := range sorted {
		c := &sorted[i]
		if campaign == nil && isCampaignType(c.Type) {
			campaign = c
		}
		if regular == nil && c.Type == TypeRegular {
			regular = c
		}
		if campaign != nil && regular != nil {
			break
		}
	}
	if campaign != nil && regular != nil && campaign.Amount > regular.Amount {
		campaign, regular = regular, campaign
	}

	sel := Selection{Campaign: campaign, Regular: regular}
	switch {
	case campaign != nil && regular != nil:
		if regular.Amount > 0 {
			sel.Discount = int(math.Round((1 - float64(campaign.Amount)/float64(regular.Amount)) * 100))
		}
		sel.Display = fmt.Sprintf("%s → %s（%d%%OFF）", regular.Text, campaign.Text, sel.Discount)
	case campaign != nil:
		sel.Display = campaign.Text
	case regular != nil:
		sel.Display = regular.Text
	}
	return sel
}

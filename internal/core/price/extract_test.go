package price

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	return NewExtractor(DefaultWeights())
}

func TestExtractFindsLabeledPrices(t *testing.T) {
	e := newTestExtractor(t)
	html := `<html><body><p>通常価格1,980円のところ、初回限定500円でお試しいただけます。</p></body></html>`

	cands := e.Extract(html, "")
	require.NotEmpty(t, cands)

	var intro, regular *Candidate
	for i := range cands {
		switch cands[i].Type {
		case TypeIntroductory:
			if intro == nil {
				intro = &cands[i]
			}
		case TypeRegular:
			if regular == nil {
				regular = &cands[i]
			}
		}
	}
	require.NotNil(t, intro)
	require.NotNil(t, regular)
	assert.Equal(t, 500, intro.Amount)
	assert.Equal(t, 1980, regular.Amount)
	assert.Greater(t, intro.Score, regular.Score, "introductory label should outrank the regular one")
	assert.Equal(t, "初回限定500円", intro.Text)
	assert.Equal(t, "通常価格1,980円", regular.Text)
}

func TestExtractOrderedByScoreThenPosition(t *testing.T) {
	e := newTestExtractor(t)
	html := `<p>定価3,300円</p><p>お試し価格980円</p><p>今だけ1,500円</p>`

	cands := e.Extract(html, "")
	require.GreaterOrEqual(t, len(cands), 3)
	for i := 1; i < len(cands); i++ {
		if cands[i-1].Score == cands[i].Score {
			assert.LessOrEqual(t, cands[i-1].Position, cands[i].Position)
		} else {
			assert.Greater(t, cands[i-1].Score, cands[i].Score)
		}
	}
}

func TestSelectDisplayFormat(t *testing.T) {
	cands := []Candidate{
		{Type: TypeRegular, Amount: 1980, Text: "通常価格1,980円", Score: 60},
		{Type: TypeIntroductory, Amount: 500, Text: "初回限定500円", Score: 150},
	}
	sel := Select(cands)
	require.NotNil(t, sel.Campaign)
	require.NotNil(t, sel.Regular)
	assert.Equal(t, 500, sel.Campaign.Amount)
	assert.Equal(t, 1980, sel.Regular.Amount)
	assert.Equal(t, 75, sel.Discount)
	assert.Equal(t, "通常価格1,980円 → 初回限定500円（75%OFF）", sel.Display)
}

func TestSelectEndToEnd(t *testing.T) {
	e := newTestExtractor(t)
	html := `<html><body><p>通常価格1,980円のところ、初回限定500円でお試しいただけます。</p></body></html>`

	sel := Select(e.Extract(html, ""))
	assert.Equal(t, "通常価格1,980円 → 初回限定500円（75%OFF）", sel.Display)
}

func TestSelectSwapsInvertedPair(t *testing.T) {
	// The struck-through regular price sometimes sits inside campaign
	// markup; the higher figure must end up on the regular side.
	cands := []Candidate{
		{Type: TypeIntroductory, Amount: 1980, Text: "初回限定1,980円", Score: 150},
		{Type: TypeRegular, Amount: 500, Text: "通常価格500円", Score: 60},
	}
	sel := Select(cands)
	require.NotNil(t, sel.Campaign)
	require.NotNil(t, sel.Regular)
	assert.Equal(t, 500, sel.Campaign.Amount)
	assert.Equal(t, 1980, sel.Regular.Amount)
	assert.True(t, strings.HasPrefix(sel.Display, "初回限定1,980円 → "))
}

func TestSelectCandidateOrderDoesNotMatter(t *testing.T) {
	a := []Candidate{
		{Type: TypeRegular, Amount: 980, Text: "通常価格980円", Score: 60},
		{Type: TypeIntroductory, Amount: 500, Text: "初回限定500円", Score: 150},
	}
	b := []Candidate{a[1], a[0]}

	selA, selB := Select(a), Select(b)
	assert.Equal(t, selA.Display, selB.Display)
	assert.Equal(t, "通常価格980円 → 初回限定500円（49%OFF）", selA.Display)
}

func TestSelectSingleCandidate(t *testing.T) {
	sel := Select([]Candidate{{Type: TypeTrial, Amount: 980, Text: "お試し価格980円", Score: 120}})
	require.NotNil(t, sel.Campaign)
	assert.Nil(t, sel.Regular)
	assert.Equal(t, "お試し価格980円", sel.Display)
	assert.Zero(t, sel.Discount)
}

func TestSelectNoCurrency(t *testing.T) {
	e := newTestExtractor(t)
	cands := e.Extract(`<html><body><p>最高の品質をお届けします。</p></body></html>`, "価格はお問い合わせください")
	assert.Empty(t, cands)

	sel := Select(cands)
	assert.Nil(t, sel.Campaign)
	assert.Nil(t, sel.Regular)
	assert.Equal(t, "", sel.Display)
}

func TestDedupeKeepsFirstAndIsIdempotent(t *testing.T) {
	cands := []Candidate{
		{Type: TypeIntroductory, Amount: 500, Text: "初回限定500円", Position: 10},
		{Type: TypeIntroductory, Amount: 500, Text: "初回500円", Position: 900},
		{Type: TypeRegular, Amount: 500, Text: "通常価格500円", Position: 50},
	}

	once := Dedupe(cands)
	require.Len(t, once, 2)
	assert.Equal(t, "初回限定500円", once[0].Text)

	twice := Dedupe(once)
	assert.Equal(t, once, twice)
}

func TestPlainTextFallbackPenalty(t *testing.T) {
	e := newTestExtractor(t)
	html := `<html><body><p>お得なセットのご案内</p></body></html>`
	plain := "初回限定500円でスタート"

	cands := e.Extract(html, plain)
	require.NotEmpty(t, cands)
	assert.Equal(t, 100-DefaultWeights().PlainTextPenalty, cands[0].Priority)
}

func TestPlainTextNotScannedWhenHTMLHasCandidates(t *testing.T) {
	e := newTestExtractor(t)
	html := `<p>通常価格2,980円</p>`
	plain := "初回限定100円"

	cands := e.Extract(html, plain)
	for _, c := range cands {
		assert.NotEqual(t, 100, c.Amount, "plain text corpus must be ignored when the document yields candidates")
	}
}

func TestContextBonusRaisesScore(t *testing.T) {
	e := newTestExtractor(t)
	withContext := e.Extract(`<p>今だけ限定、お試し価格980円！</p>`, "")
	without := e.Extract(`<p>お試し価格980円です。</p>`, "")
	require.NotEmpty(t, withContext)
	require.NotEmpty(t, without)
	assert.Greater(t, withContext[0].Score, without[0].Score)
}

func TestParseAmount(t *testing.T) {
	cases := map[string]struct {
		amount int
		ok     bool
	}{
		"1,980":  {1980, true},
		"¥500":   {500, true},
		"￥12,000": {12000, true},
		"0":      {0, false},
		"":       {0, false},
		"abc":    {0, false},
	}
	for in, want := range cases {
		got, ok := parseAmount(in)
		assert.Equal(t, want.ok, ok, "input %q", in)
		if want.ok {
			assert.Equal(t, want.amount, got, "input %q", in)
		}
	}
}

func TestLoadWeightsMissingFileKeepsDefaults(t *testing.T) {
	w, err := LoadWeights("/nonexistent/weights.yaml")
	assert.Error(t, err)
	assert.Equal(t, DefaultWeights().TypeBase, w.TypeBase)
}

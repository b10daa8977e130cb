package extract

import (
	"net/url"
	"strings"
	"time"

	"lplens/internal/core/price"
	"lplens/internal/utils/htmltext"

	"github.com/PuerkitoBio/goquery"
)

// Result is the canonical record assembled from one acquired document.
type Result struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`

	Price           string            `json:"price,omitempty"`
	CampaignPrice   *price.Candidate  `json:"campaign_price,omitempty"`
	RegularPrice    *price.Candidate  `json:"regular_price,omitempty"`
	DiscountRate    int               `json:"discount_rate,omitempty"`
	PriceCandidates []price.Candidate `json:"price_candidates,omitempty"`
	PriceInImage    bool              `json:"price_in_image,omitempty"`

	Features         []string                 `json:"features,omitempty"`
	Effects          []string                 `json:"effects,omitempty"`
	Ingredients      []string                 `json:"ingredients,omitempty"`
	Company          string                   `json:"company,omitempty"`
	Campaign         string                   `json:"campaign,omitempty"`
	Guarantee        string                   `json:"guarantee,omitempty"`
	Authority        []string                 `json:"authority,omitempty"`
	TestimonialCount int                      `json:"testimonial_count,omitempty"`
	Images           []string                 `json:"images,omitempty"`
	OGTitle          string                   `json:"og_title,omitempty"`
	OGDescription    string                   `json:"og_description,omitempty"`
	OGImage          string                   `json:"og_image,omitempty"`
	StructuredData   []map[string]interface{} `json:"structured_data,omitempty"`

	FetchStrategy string    `json:"fetch_strategy,omitempty"`
	FetchedAt     time.Time `json:"fetched_at,omitempty"`
}

// Assemble runs every field extractor and the price subsystem over one
// document. It does no I/O and never fails: a malformed document just
// produces a sparse record.
func Assemble(html, pageURL string, pricer *price.Extractor) *Result {
	r := &Result{URL: pageURL, FetchedAt: time.Now().UTC()}
	plain := htmltext.PlainText(html)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		r.Title = Title(doc)
		r.ProductName = ProductName(doc)
		r.Description = Description(doc)
		r.Category = Category(doc)
		r.Features = Features(doc)
		r.Effects = Effects(doc)
		r.Company = Company(doc, plain)
		r.OGTitle, r.OGDescription, r.OGImage = OpenGraph(doc)
		r.StructuredData = StructuredData(doc)
		r.PriceInImage = HasPriceImage(doc)

		if base, berr := url.Parse(pageURL); berr == nil {
			r.Images = Images(doc, base)
		}
	}

	r.Ingredients = Ingredients(plain)
	r.Campaign = CampaignText(plain)
	r.Guarantee = Guarantee(plain)
	r.Authority = Authority(plain)
	r.TestimonialCount = TestimonialCount(plain)

	if pricer != nil {
		r.PriceCandidates = pricer.Extract(html, plain)
		sel := price.Select(r.PriceCandidates)
		r.CampaignPrice = sel.Campaign
		r.RegularPrice = sel.Regular
		r.DiscountRate = sel.Discount
		r.Price = sel.Display
	}

	if r.Category == "" {
		r.Category = categoryFromStructuredData(r.StructuredData)
	}
	if r.Category == "" {
		r.Category = categoryFromKeywords(r.Title + " " + r.Description + " " + strings.Join(r.Features, " "))
	}
	return r
}

func categoryFromStructuredData(blocks []map[string]interface{}) string {
	for _, b := range blocks {
		if c, ok := b["category"].(string); ok && strings.TrimSpace(c) != "" {
			return strings.TrimSpace(c)
		}
	}
	return ""
}

// Score measures how complete a record is. The weights favor prices:
// a record without any price is capped well below the early-stop line.
func (r *Result) Score() int {
	score := 0
	if r.CampaignPrice != nil {
		score += 40
	}
	if r.RegularPrice != nil {
		score += 20
	}
	if r.CampaignPrice != nil && r.RegularPrice != nil {
		score += 10
	}
	if r.Title != "" {
		score += 5
	}
	if r.Description != "" {
		score += 5
	}
	if len(r.Features) > 0 {
		score += 10
	}
	if len(r.Images) > 0 {
		score += 5
	}
	if r.Category != "" {
		score += 5
	}
	return score
}

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"美容・コスメ", []string{"化粧水", "美容液", "クリーム", "コスメ", "スキンケア", "オールインワン"}},
	{"健康食品", []string{"サプリ", "サプリメント", "ビタミン", "健康食品", "青汁", "乳酸菌"}},
	{"ダイエット", []string{"ダイエット", "痩せ", "燃焼", "糖質"}},
	{"ヘアケア", []string{"シャンプー", "育毛", "白髪", "ヘアケア"}},
	{"ベビー・キッズ", []string{"ベビー", "赤ちゃん", "子供", "キッズ"}},
}

func categoryFromKeywords(text string) string {
	for _, ck := range categoryKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(text, kw) {
				return ck.category
			}
		}
	}
	return ""
}

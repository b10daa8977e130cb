package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field extractors are best effort: they return zero values instead of
// errors, and the assembler fills in whatever they found.

// Title prefers the document title, then the first h1, then og:title.
func Title(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return ""
}

var productNameSelectors = []string{
	".product-name", ".product_name", "#product-name", "#product_name",
	"[itemprop=name]", ".item-name", ".item_name",
}

// ProductName looks for explicit product markup first and otherwise
// derives a name from the title with vendor boilerplate stripped.
func ProductName(doc *goquery.Document) string {
	for _, sel := range productNameSelectors {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return cleanProductName(Title(doc))
}

var (
	bracketRe     = regexp.MustCompile(`【[^】]*】`)
	separatorRe   = regexp.MustCompile(`\s*[|｜‐–—-]\s*(公式|公式サイト|公式通販|通販|オンラインショップ).*$`)
	boilerplateRe = regexp.MustCompile(`(公式サイト|公式通販|公式|送料無料)`)
)

func cleanProductName(title string) string {
	name := bracketRe.ReplaceAllString(title, "")
	name = separatorRe.ReplaceAllString(name, "")
	// Anything after a plain separator is usually the shop name
	for _, sep := range []string{"｜", "|"} {
		if i := strings.Index(name, sep); i > 0 {
			name = name[:i]
		}
	}
	name = boilerplateRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// Description prefers the meta description over og:description.
func Description(doc *goquery.Document) string {
	if d, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && strings.TrimSpace(d) != "" {
		return strings.TrimSpace(d)
	}
	if d, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		return strings.TrimSpace(d)
	}
	return ""
}

// Category reads the second-to-last breadcrumb entry, falling back to
// class-hinted elements. The last breadcrumb is usually the product
// itself, so the entry before it names the category.
func Category(doc *goquery.Document) string {
	for _, sel := range []string{".breadcrumb li", ".breadcrumbs li", "[itemprop=itemListElement]", ".topic-path li"} {
		items := doc.Find(sel)
		if items.Length() >= 2 {
			if t := strings.TrimSpace(items.Eq(items.Length() - 2).Text()); t != "" && t != "ホーム" && t != "トップ" {
				return t
			}
		}
	}
	for _, sel := range []string{".category", ".product-category", "[itemprop=category]"} {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

var companyRe = regexp.MustCompile(`(販売元|製造元|製造販売元|会社名|販売業者)[:：]?\s*([^\s<>、。]{2,30})`)

// Company reads seller markup or a labeled line in the visible text.
func Company(doc *goquery.Document, plain string) string {
	for _, sel := range []string{".company", ".company-name", ".shop-name", "[itemprop=brand]"} {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	if m := companyRe.FindStringSubmatch(plain); len(m) >= 3 {
		return strings.TrimSpace(m[2])
	}
	return ""
}

var campaignRe = regexp.MustCompile(`(今だけ|期間限定|キャンペーン|数量限定|先着)[^。<>\n]{0,60}`)

// CampaignText returns the first campaign sentence fragment.
func CampaignText(plain string) string {
	return strings.TrimSpace(campaignRe.FindString(plain))
}

var guaranteeRe = regexp.MustCompile(`[^。<>\n]{0,30}(返金保証|返品保証|満足保証|全額返金)[^。<>\n]{0,30}`)

// Guarantee returns the guarantee statement surrounding its keyword.
func Guarantee(plain string) string {
	return strings.TrimSpace(guaranteeRe.FindString(plain))
}

var authorityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(医師|薬剤師|専門家|皮膚科医)監修`),
	regexp.MustCompile(`特許(取得|出願中)?`),
	regexp.MustCompile(`[^\s<>、。]{0,12}(受賞|金賞)`),
	regexp.MustCompile(`(ランキング|売上|人気)(第?1位|No\.?1)`),
	regexp.MustCompile(`モンドセレクション[^\s<>、。]{0,10}`),
}

// Authority collects trust markers: supervision credits, patents, awards,
// ranking claims. Duplicates are dropped.
func Authority(plain string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, re := range authorityPatterns {
		for _, m := range re.FindAllString(plain, 5) {
			m = strings.TrimSpace(m)
			if m == "" {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

var testimonialRe = regexp.MustCompile(`お客様の声|口コミ|レビュー|体験談|ご愛用者`)

// TestimonialCount counts social-proof markers in the visible text.
func TestimonialCount(plain string) int {
	return len(testimonialRe.FindAllString(plain, -1))
}

// OpenGraph returns the og:title, og:description, and og:image values.
func OpenGraph(doc *goquery.Document) (title, description, image string) {
	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		title = strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		description = strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		image = strings.TrimSpace(v)
	}
	return title, description, image
}

// StructuredData parses every ld+json block. Bad blocks are skipped, a
// top-level array contributes each of its objects.
func StructuredData(doc *goquery.Document) []map[string]interface{} {
	var out []map[string]interface{}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var parsed interface{}
		if err := json.Unmarshal([]byte(s.Text()), &parsed); err != nil {
			return
		}
		switch v := parsed.(type) {
		case map[string]interface{}:
			out = append(out, v)
		case []interface{}:
			for _, item := range v {
				if m, ok := item.(map[string]interface{}); ok {
					out = append(out, m)
				}
			}
		}
	})
	return out
}

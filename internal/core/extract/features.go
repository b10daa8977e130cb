package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	featureMinRunes = 10
	featureMaxRunes = 200
	maxFeatures     = 10
	maxEffects      = 5
	maxIngredients  = 10
)

var featureSelectors = []string{
	"ul.features li", "ul.feature li", ".feature-list li", ".point-list li",
	"[class*=feature] li", "[class*=point] li", "[class*=benefit] li", "[class*=merit] li",
}

var checkmarkRe = regexp.MustCompile(`[✓✔☑◎●][\s　]*([^\n<>]{5,})`)

// Features collects selling points from list markup, class-hinted
// containers, and checkmark-prefixed lines. Entries outside the length
// window or containing markup are rejected.
func Features(doc *goquery.Document) []string {
	var raw []string
	for _, sel := range featureSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			raw = append(raw, s.Text())
		})
		if len(raw) >= maxFeatures*2 {
			break
		}
	}
	if len(raw) < maxFeatures {
		doc.Find("li").Each(func(_ int, s *goquery.Selection) {
			raw = append(raw, s.Text())
		})
	}
	if body := doc.Find("body").Text(); body != "" {
		for _, m := range checkmarkRe.FindAllStringSubmatch(body, maxFeatures) {
			raw = append(raw, m[1])
		}
	}
	return filterFeatures(raw)
}

func filterFeatures(raw []string) []string {
	out := make([]string, 0, maxFeatures)
	seen := make(map[string]struct{})
	for _, f := range raw {
		f = normalizeSpace(f)
		if !validFeature(f) {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
		if len(out) >= maxFeatures {
			break
		}
	}
	return out
}

func validFeature(f string) bool {
	n := utf8.RuneCountInString(f)
	if n < featureMinRunes || n > featureMaxRunes {
		return false
	}
	return !strings.ContainsAny(f, "<>")
}

var effectKeywordRe = regexp.MustCompile(`効果|実感|改善|解消|サポート|ケア|潤い|ハリ`)

// Effects pulls short paragraphs that talk about what the product does.
func Effects(doc *goquery.Document) []string {
	var out []string
	seen := make(map[string]struct{})
	doc.Find("p, div.effect, [class*=effect]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 2 {
			return true
		}
		t := normalizeSpace(s.Text())
		if t == "" || utf8.RuneCountInString(t) >= 150 {
			return true
		}
		if !effectKeywordRe.MatchString(t) {
			return true
		}
		if _, ok := seen[t]; ok {
			return true
		}
		seen[t] = struct{}{}
		out = append(out, t)
		return len(out) < maxEffects
	})
	return out
}

var (
	ingredientsRe   = regexp.MustCompile(`(全成分|配合成分|主要成分|成分|原材料名?)[:：]\s*([^<>。\n]{2,200})`)
	ingredientSepRe = regexp.MustCompile(`[、,・/]`)
)

// Ingredients parses a labeled ingredient line and splits it on Japanese
// list separators.
func Ingredients(plain string) []string {
	m := ingredientsRe.FindStringSubmatch(plain)
	if len(m) < 3 {
		return nil
	}
	parts := ingredientSepRe.Split(m[2], -1)
	out := make([]string, 0, maxIngredients)
	seen := make(map[string]struct{})
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || utf8.RuneCountInString(p) > 30 {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
		if len(out) >= maxIngredients {
			break
		}
	}
	return out
}

var spaceRe = regexp.MustCompile(`[\s　]+`)

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

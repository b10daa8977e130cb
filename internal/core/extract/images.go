package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxImages = 10

var imageExtRe = regexp.MustCompile(`(?i)\.(jpe?g|png|webp|gif|avif)$`)

// Images collects img sources resolved against the page URL. Sources
// that cannot be resolved to an absolute http(s) URL are dropped, not
// kept as-is: relative paths are useless to any downstream consumer.
func Images(doc *goquery.Document, base *url.URL) []string {
	out := make([]string, 0, maxImages)
	seen := make(map[string]struct{})

	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			src, ok = s.Attr("data-src")
			if !ok {
				return true
			}
		}
		abs := resolveImage(base, src)
		if abs == "" {
			return true
		}
		if _, dup := seen[abs]; dup {
			return true
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
		return len(out) < maxImages
	})
	return out
}

func resolveImage(base *url.URL, src string) string {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	if base == nil {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	if abs.Host == "" {
		return ""
	}
	if !imageExtRe.MatchString(abs.Path) && abs.Path != "" && strings.Contains(abs.Path, ".") {
		// Has an extension but not an image one
		return ""
	}
	return abs.String()
}

var priceImageRe = regexp.MustCompile(`(?i)(cv\d+|price|kakaku|campaign|offer|teiki)[^/]*\.(jpe?g|png|webp|gif)`)

// HasPriceImage reports whether any image filename suggests the offer is
// rendered as a picture. Such pages often have no machine-readable price
// at all, which is worth surfacing alongside an empty price field.
func HasPriceImage(doc *goquery.Document) bool {
	found := false
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if priceImageRe.MatchString(src) {
			found = true
			return false
		}
		return true
	})
	return found
}

package htmltext

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	scriptRe     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// PlainText strips markup from an HTML document and returns the visible
// text with whitespace collapsed. Campaign prices on landing pages often
// live in text nodes that tag-aware regexes miss, so this rendering is
// scanned as a second corpus.
func PlainText(html string) string {
	html = scriptRe.ReplaceAllString(html, " ")
	html = styleRe.ReplaceAllString(html, " ")
	html = tagRe.ReplaceAllString(html, " ")
	html = decodeEntities(html)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(html, " "))
}

// StripTags removes markup from a fragment without touching whitespace
// beyond trimming. Used for candidate context windows and feature text.
func StripTags(fragment string) string {
	fragment = tagRe.ReplaceAllString(fragment, " ")
	fragment = decodeEntities(fragment)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(fragment, " "))
}

func decodeEntities(s string) string {
	r := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
		"&amp;", "&",
	)
	return r.Replace(s)
}

// Markdown converts an HTML document to cleaned markdown, dropping
// boilerplate regions first. The output feeds the enrichment prompt,
// where nav menus and cookie banners only waste tokens.
func Markdown(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var content *goquery.Selection
	for _, tag := range []string{"main", "[role=\"main\"]", "#content", "#main"} {
		if doc.Find(tag).Length() > 0 {
			content = doc.Find(tag).First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	content.Find("script, style, noscript, nav, header, aside, form, iframe, svg, button, input").Each(func(_ int, s *goquery.Selection) { s.Remove() })
	content.Find("[role=\"navigation\"], [role=\"banner\"], [role=\"contentinfo\"], [aria-label*=\"cookie\" i], [aria-modal]").Each(func(_ int, s *goquery.Selection) { s.Remove() })

	keywords := []string{
		"cookie", "consent", "banner", "navbar", "nav-", "menu-",
		"pagination", "share", "signup", "signin", "login",
		"ad-", "advert", "modal", "popup", "dialog", "sidebar",
	}
	content.Find("[class], [id]").Each(func(_ int, sel *goquery.Selection) {
		classVal, _ := sel.Attr("class")
		idVal, _ := sel.Attr("id")
		lower := strings.ToLower(classVal + " " + idVal)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				sel.Remove()
				break
			}
		}
	})

	body, err := content.Html()
	if err != nil {
		return ""
	}

	conv := md.NewConverter("", true, nil)
	out, err := conv.ConvertString(body)
	if err != nil {
		return ""
	}

	out = dropImageOnlyLines(out)
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

var mdImageRe = regexp.MustCompile(`!\[[^\]]*\]\([^\)]+\)`)

func dropImageOnlyLines(mdText string) string {
	lines := strings.Split(mdText, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		line := strings.TrimSpace(l)
		if line == "" {
			continue
		}
		if mdImageRe.MatchString(line) && strings.TrimSpace(mdImageRe.ReplaceAllString(line, "")) == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

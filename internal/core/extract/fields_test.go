package extract

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestTitleFallbackOrder(t *testing.T) {
	doc := mustDoc(t, `<html><head><title>タイトル</title><meta property="og:title" content="OGタイトル"></head><body><h1>見出し</h1></body></html>`)
	assert.Equal(t, "タイトル", Title(doc))

	doc = mustDoc(t, `<html><head><meta property="og:title" content="OGタイトル"></head><body><h1>見出し</h1></body></html>`)
	assert.Equal(t, "見出し", Title(doc))

	doc = mustDoc(t, `<html><head><meta property="og:title" content="OGタイトル"></head><body></body></html>`)
	assert.Equal(t, "OGタイトル", Title(doc))

	doc = mustDoc(t, `<html><body></body></html>`)
	assert.Equal(t, "", Title(doc))
}

func TestProductNamePrefersMarkup(t *testing.T) {
	doc := mustDoc(t, `<html><head><title>【公式】モイストゲル｜公式通販サイト</title></head><body><span itemprop="name">モイストゲル プレミアム</span></body></html>`)
	assert.Equal(t, "モイストゲル プレミアム", ProductName(doc))
}

func TestProductNameStripsBoilerplate(t *testing.T) {
	doc := mustDoc(t, `<html><head><title>【公式】モイストゲル｜公式通販サイト</title></head><body></body></html>`)
	assert.Equal(t, "モイストゲル", ProductName(doc))
}

func TestDescriptionPrefersMetaOverOG(t *testing.T) {
	doc := mustDoc(t, `<html><head><meta name="description" content="メタ説明"><meta property="og:description" content="OG説明"></head></html>`)
	assert.Equal(t, "メタ説明", Description(doc))

	doc = mustDoc(t, `<html><head><meta property="og:description" content="OG説明"></head></html>`)
	assert.Equal(t, "OG説明", Description(doc))
}

func TestCategoryFromBreadcrumb(t *testing.T) {
	doc := mustDoc(t, `<html><body><ul class="breadcrumb"><li>ホーム</li><li>スキンケア</li><li>モイストゲル</li></ul></body></html>`)
	assert.Equal(t, "スキンケア", Category(doc))
}

func TestFeaturesBoundsAndDedupe(t *testing.T) {
	long := strings.Repeat("あ", 201)
	doc := mustDoc(t, `<html><body><ul>
		<li>保湿</li>
		<li>たっぷり保湿成分配合で乾燥知らず</li>
		<li>たっぷり保湿成分配合で乾燥知らず</li>
		<li>`+long+`</li>
		<li>無添加処方だから敏感肌でも安心</li>
	</ul></body></html>`)

	got := Features(doc)
	assert.Equal(t, []string{"たっぷり保湿成分配合で乾燥知らず", "無添加処方だから敏感肌でも安心"}, got)
	for _, f := range got {
		assert.NotContains(t, f, "<")
		assert.NotContains(t, f, ">")
	}
}

func TestFeaturesFromCheckmarkLines(t *testing.T) {
	doc := mustDoc(t, `<html><body><p>✓ 国内工場で製造された安心品質</p></body></html>`)
	assert.Contains(t, Features(doc), "国内工場で製造された安心品質")
}

func TestFeaturesCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for i := 0; i < 15; i++ {
		b.WriteString("<li>たっぷり保湿成分配合で乾燥知らず その")
		b.WriteString(strings.Repeat("あ", i+1))
		b.WriteString("</li>")
	}
	b.WriteString("</ul></body></html>")

	got := Features(mustDoc(t, b.String()))
	assert.LessOrEqual(t, len(got), 10)
}

func TestImagesAbsoluteOnly(t *testing.T) {
	base, _ := url.Parse("https://example.jp/lp/index.html")
	doc := mustDoc(t, `<html><body>
		<img src="/img/main.jpg">
		<img src="sub.png">
		<img src="https://cdn.example.jp/abs.webp">
		<img src="//cdn.example.jp/proto.jpg">
		<img src="data:image/png;base64,xyz">
		<img src="http://%zz/broken.jpg">
		<img src="/docs/catalog.pdf">
		<img src="/img/main.jpg">
	</body></html>`)

	got := Images(doc, base)
	assert.Equal(t, []string{
		"https://example.jp/img/main.jpg",
		"https://example.jp/lp/sub.png",
		"https://cdn.example.jp/abs.webp",
		"https://cdn.example.jp/proto.jpg",
	}, got)
	for _, img := range got {
		assert.True(t, strings.HasPrefix(img, "http"), "image %q must be absolute", img)
	}
}

func TestHasPriceImage(t *testing.T) {
	doc := mustDoc(t, `<html><body><img src="/images/cv01_price.png"></body></html>`)
	assert.True(t, HasPriceImage(doc))

	doc = mustDoc(t, `<html><body><img src="/images/hero.png"></body></html>`)
	assert.False(t, HasPriceImage(doc))
}

func TestStructuredDataSkipsBadBlocks(t *testing.T) {
	doc := mustDoc(t, `<html><head>
		<script type="application/ld+json">{"@type":"Product","name":"モイストゲル"}</script>
		<script type="application/ld+json">{not json at all</script>
		<script type="application/ld+json">[{"@type":"Offer"},{"@type":"Brand"}]</script>
	</head></html>`)

	got := StructuredData(doc)
	require.Len(t, got, 3)
	assert.Equal(t, "Product", got[0]["@type"])
	assert.Equal(t, "Offer", got[1]["@type"])
	assert.Equal(t, "Brand", got[2]["@type"])
}

func TestAuthorityDedupe(t *testing.T) {
	plain := "皮膚科医監修のスキンケア。皮膚科医監修だから安心。特許取得の独自成分。モンドセレクション金賞"
	got := Authority(plain)

	seen := make(map[string]int)
	for _, a := range got {
		seen[a]++
	}
	for a, n := range seen {
		assert.Equal(t, 1, n, "marker %q duplicated", a)
	}
	assert.Contains(t, got, "皮膚科医監修")
	assert.Contains(t, got, "特許取得")
}

func TestTestimonialCount(t *testing.T) {
	plain := "お客様の声を紹介。口コミで話題。レビュー多数。"
	assert.Equal(t, 3, TestimonialCount(plain))
	assert.Equal(t, 0, TestimonialCount("特に言及なし"))
}

func TestIngredientsSplit(t *testing.T) {
	plain := "全成分：水、グリセリン、ヒアルロン酸Na、セラミドNP"
	got := Ingredients(plain)
	assert.Equal(t, []string{"水", "グリセリン", "ヒアルロン酸Na", "セラミドNP"}, got)
}

func TestGuaranteeAndCampaign(t *testing.T) {
	plain := "いまなら30日間全額返金保証つき。期間限定で送料無料キャンペーン実施中。"
	assert.Contains(t, Guarantee(plain), "返金保証")
	assert.Contains(t, CampaignText(plain), "期間限定")
}

func TestCompanyFromLabel(t *testing.T) {
	doc := mustDoc(t, `<html><body></body></html>`)
	assert.Equal(t, "株式会社サンプル", Company(doc, "販売元：株式会社サンプル"))
}

package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordStripsFences(t *testing.T) {
	reply := "```json\n{\"product_info\":{\"name\":\"モイストゲル\",\"category\":\"美容・コスメ\",\"features\":[]},\"classification\":{\"market_type\":\"existing_market\",\"action_reason\":\"search\"}}\n```"

	rec, err := parseRecord(reply)
	require.NoError(t, err)
	assert.Equal(t, "モイストゲル", rec.ProductInfo.Name)
	assert.Equal(t, "existing_market", rec.Classification.MarketType)
}

func TestParseRecordPlainJSON(t *testing.T) {
	rec, err := parseRecord(`{"pricing":{"regular":"1,980円","campaign":"500円","discount_rate":75,"strategy":"初回割引"}}`)
	require.NoError(t, err)
	assert.Equal(t, 75, rec.Pricing.DiscountRate)
}

func TestParseRecordRejectsGarbage(t *testing.T) {
	_, err := parseRecord("the model decided to chat instead")
	assert.Error(t, err)
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight/internal/models"
)

func newTestSynthesizer(model *fakeModel) *Synthesizer {
	return NewSynthesizerWithSource(model, nil, rand.NewSource(1))
}

func TestSynthesizeAcceptsValidModelReply(t *testing.T) {
	model := &fakeModel{data: threeAppleRecords}
	s := newTestSynthesizer(model)

	records := s.Synthesize(context.Background(), "AAPL")
	require.Len(t, records, 3)
	assert.Equal(t, "AAPL", records[0].Symbol)
	assert.True(t, records[0].Price.Equal(decimal.NewFromFloat(187.32)))
	assert.Equal(t, int64(1000000), records[0].Volume)
}

func TestSynthesizeAcceptsReplyWithProsePadding(t *testing.T) {
	model := &fakeModel{data: "Here is the data:\n" + threeAppleRecords + "\nHope that helps!"}
	s := newTestSynthesizer(model)

	records := s.Synthesize(context.Background(), "AAPL")
	assert.Len(t, records, 3)
}

func TestSynthesizeRejectsOffShapeReplies(t *testing.T) {
	tooMany := make([]string, 11)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf(`{"symbol": "AAPL", "price": 100.00, "volume": %d}`, i+1)
	}

	tests := []struct {
		name  string
		reply string
	}{
		{"too few records", `[{"symbol": "AAPL", "price": 100.00, "volume": 1}]`},
		{"too many records", "[" + strings.Join(tooMany, ",") + "]"},
		{"negative price", `[{"symbol": "A", "price": -1, "volume": 1}, {"symbol": "B", "price": 2, "volume": 2}, {"symbol": "C", "price": 3, "volume": 3}]`},
		{"too many decimal places", `[{"symbol": "A", "price": 1.123, "volume": 1}, {"symbol": "B", "price": 2, "volume": 2}, {"symbol": "C", "price": 3, "volume": 3}]`},
		{"negative volume", `[{"symbol": "A", "price": 1, "volume": -1}, {"symbol": "B", "price": 2, "volume": 2}, {"symbol": "C", "price": 3, "volume": 3}]`},
		{"empty symbol", `[{"symbol": "", "price": 1, "volume": 1}, {"symbol": "B", "price": 2, "volume": 2}, {"symbol": "C", "price": 3, "volume": 3}]`},
		{"not an array of records", `{"symbol": "AAPL"}`},
		{"no json at all", "I cannot generate data right now."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSynthesizer(&fakeModel{data: tt.reply})
			records := s.Synthesize(context.Background(), "AAPL")
			assertFallbackShape(t, records)
		})
	}
}

func TestSynthesizeFallsBackOnModelError(t *testing.T) {
	s := newTestSynthesizer(&fakeModel{err: errors.New("provider unreachable")})
	records := s.Synthesize(context.Background(), "tech sector")
	assertFallbackShape(t, records)
}

func TestSynthesizeFallbackIsDeterministicPerSeed(t *testing.T) {
	model := &fakeModel{err: errors.New("down")}
	a := NewSynthesizerWithSource(model, nil, rand.NewSource(42))
	b := NewSynthesizerWithSource(model, nil, rand.NewSource(42))

	assert.Equal(t,
		a.Synthesize(context.Background(), "AAPL"),
		b.Synthesize(context.Background(), "AAPL"))
}

func TestSynthesizePromptSelection(t *testing.T) {
	model := &fakeModel{data: threeAppleRecords}
	s := newTestSynthesizer(model)

	s.Synthesize(context.Background(), "automotive sector")
	assert.True(t, model.sawPrompt(`"automotive sector"`))

	s.Synthesize(context.Background(), "")
	assert.True(t, model.sawPrompt("major companies"), "empty subject should use the generic prompt")
}

// assertFallbackShape checks the bounds every synthetic batch must satisfy.
func assertFallbackShape(t *testing.T, records []models.StockRecord) {
	t.Helper()

	require.GreaterOrEqual(t, len(records), fallbackMinRecords)
	require.LessOrEqual(t, len(records), fallbackMaxRecords)

	for _, r := range records {
		assert.True(t, slices.Contains(fallbackSymbols, r.Symbol), "symbol %q not in pool", r.Symbol)
		assert.True(t, r.Price.GreaterThanOrEqual(decimal.NewFromInt(fallbackMinPrice)), "price %s below minimum", r.Price)
		assert.True(t, r.Price.LessThanOrEqual(decimal.NewFromInt(fallbackMaxPrice)), "price %s above maximum", r.Price)
		assert.NoError(t, r.Validate())
		assert.GreaterOrEqual(t, r.Volume, int64(fallbackMinVolume))
		assert.LessOrEqual(t, r.Volume, int64(fallbackMaxVolume))
	}
}

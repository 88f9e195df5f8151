package pipeline

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finsight-ai/finsight/internal/llm"
	"github.com/finsight-ai/finsight/internal/models"
	"github.com/finsight-ai/finsight/internal/prompts"
)

// Accepted size of a model-generated batch.
const (
	minRecords = 3
	maxRecords = 10
)

// Fallback generation bounds.
const (
	fallbackMinRecords = 3
	fallbackMaxRecords = 5
	fallbackMinPrice   = 50
	fallbackMaxPrice   = 1000
	fallbackMinVolume  = 50_000
	fallbackMaxVolume  = 5_000_000
)

// fallbackSymbols is the fixed pool used when the model is unusable.
var fallbackSymbols = []string{
	"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "NVDA", "JPM", "V", "MA", "PG", "KO",
}

// Synthesizer produces stock records for a resolved data subject. The model
// output is validated strictly; anything off-shape is replaced by synthetic
// records so a fetch turn never fails upstream.
type Synthesizer struct {
	gen llm.Generator
	log *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSynthesizer(gen llm.Generator, log *zap.Logger) *Synthesizer {
	return NewSynthesizerWithSource(gen, log, rand.NewSource(time.Now().UnixNano()))
}

// NewSynthesizerWithSource pins the fallback randomness, for tests.
func NewSynthesizerWithSource(gen llm.Generator, log *zap.Logger, src rand.Source) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{gen: gen, log: log, rng: rand.New(src)}
}

// Synthesize returns 3-10 validated records for subject (all companies when
// subject is empty). Never returns an empty slice.
func (s *Synthesizer) Synthesize(ctx context.Context, subject string) []models.StockRecord {
	var prompt string
	if subject != "" {
		prompt = prompts.MustLoadWithContext("synthesize_subject", map[string]string{
			"Subject": subject,
		})
	} else {
		prompt = prompts.MustLoadWithContext("synthesize_generic", nil)
	}

	reply, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.log.Warn("data model call failed, using fallback records", zap.Error(err))
		return s.fallbackRecords()
	}

	records, err := parseRecords(reply)
	if err != nil {
		s.log.Warn("model data rejected, using fallback records", zap.Error(err))
		return s.fallbackRecords()
	}
	return records
}

func parseRecords(reply string) ([]models.StockRecord, error) {
	body, ok := llm.ExtractJSONValue(reply)
	if !ok {
		return nil, errNoJSONValue
	}

	var records []models.StockRecord
	if err := json.Unmarshal([]byte(body), &records); err != nil {
		return nil, err
	}
	if err := models.ValidateRecords(records, minRecords, maxRecords); err != nil {
		return nil, err
	}
	return records, nil
}

var errNoJSONValue = jsonValueError{}

type jsonValueError struct{}

func (jsonValueError) Error() string { return "reply contains no JSON value" }

// fallbackRecords draws 3-5 synthetic records from the fixed symbol pool
// with bounded randomized prices and volumes.
func (s *Synthesizer) fallbackRecords() []models.StockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := fallbackMinRecords + s.rng.Intn(fallbackMaxRecords-fallbackMinRecords+1)
	records := make([]models.StockRecord, 0, count)
	for i := 0; i < count; i++ {
		price := fallbackMinPrice + s.rng.Float64()*(fallbackMaxPrice-fallbackMinPrice)
		volume := fallbackMinVolume + s.rng.Int63n(fallbackMaxVolume-fallbackMinVolume+1)
		records = append(records, models.StockRecord{
			Symbol: fallbackSymbols[s.rng.Intn(len(fallbackSymbols))],
			Price:  decimal.NewFromFloat(price).Round(2),
			Volume: volume,
		})
	}
	return records
}

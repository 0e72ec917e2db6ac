package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/hyperjump/shori/internal/models"
)

type textStatistics struct {
	WordCount      int `json:"wordCount"`
	CharacterCount int `json:"characterCount"`
	SentenceCount  int `json:"sentenceCount"`
	ParagraphCount int `json:"paragraphCount"`
}

type sentiment struct {
	Score string `json:"score"`
	Label string `json:"label"`
}

type textResult struct {
	Analysis       string         `json:"analysis"`
	Statistics     textStatistics `json:"statistics"`
	Keywords       []string       `json:"keywords"`
	Sentiment      sentiment      `json:"sentiment"`
	Language       string         `json:"language"`
	ProcessingTime string         `json:"processingTime"`
}

// TextAnalyzer produces text analysis results. Delay simulates
// variable-latency analysis work; zero means no delay.
type TextAnalyzer struct {
	Delay time.Duration
}

// NewTextAnalyzer returns an analyzer with the default simulated delay.
func NewTextAnalyzer() *TextAnalyzer {
	return &TextAnalyzer{Delay: 1500 * time.Millisecond}
}

// Analyze returns a synthesized text analysis payload.
func (a *TextAnalyzer) Analyze(ctx context.Context, item *models.WorkItem) (json.RawMessage, error) {
	if a.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.Delay):
		}
	}

	label := "negative"
	if rand.Float64() > 0.5 {
		label = "positive"
	}
	result := textResult{
		Analysis: "Text analysis complete",
		Statistics: textStatistics{
			WordCount:      rand.Intn(1000) + 100,
			CharacterCount: rand.Intn(5000) + 500,
			SentenceCount:  rand.Intn(50) + 5,
			ParagraphCount: rand.Intn(10) + 1,
		},
		Keywords: []string{"sample", "document", "analysis", "text", "processing"},
		Sentiment: sentiment{
			Score: fmt.Sprintf("%.2f", rand.Float64()*2-1),
			Label: label,
		},
		Language:       "English",
		ProcessingTime: fmt.Sprintf("%.2fs", rand.Float64()*1.5+0.5),
	}
	return json.Marshal(result)
}

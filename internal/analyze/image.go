package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/hyperjump/shori/internal/models"
)

type boundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type detectedObject struct {
	Name        string      `json:"name"`
	Confidence  float64     `json:"confidence"`
	BoundingBox boundingBox `json:"boundingBox"`
}

type imageResult struct {
	Analysis        string            `json:"analysis"`
	Metadata        map[string]string `json:"metadata"`
	DetectedObjects []detectedObject  `json:"detectedObjects"`
	ProcessingTime  string            `json:"processingTime"`
}

// ImageAnalyzer produces image analysis results. Delay simulates
// variable-latency analysis work; zero means no delay.
type ImageAnalyzer struct {
	Delay time.Duration
}

// NewImageAnalyzer returns an analyzer with the default simulated delay.
func NewImageAnalyzer() *ImageAnalyzer {
	return &ImageAnalyzer{Delay: 2 * time.Second}
}

// Analyze returns a synthesized image analysis payload.
func (a *ImageAnalyzer) Analyze(ctx context.Context, item *models.WorkItem) (json.RawMessage, error) {
	if a.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.Delay):
		}
	}

	result := imageResult{
		Analysis: "Image analysis complete",
		Metadata: map[string]string{
			"format":     "JPEG",
			"dimensions": "1024x768",
			"size":       "2.3MB",
		},
		DetectedObjects: []detectedObject{
			{
				Name:        "person",
				Confidence:  0.92,
				BoundingBox: boundingBox{X: 10, Y: 20, Width: 100, Height: 200},
			},
			{
				Name:        "car",
				Confidence:  0.87,
				BoundingBox: boundingBox{X: 150, Y: 200, Width: 300, Height: 150},
			},
		},
		ProcessingTime: fmt.Sprintf("%.2fs", rand.Float64()*2+1),
	}
	return json.Marshal(result)
}

// Package analysis turns a photo of an ingredient list into a safety
// breakdown. Only a fixed mock exists today.
package analysis

import (
	"context"
	"time"
)

// Result groups ingredient names by how they rate against the user's
// preferences. Matches lists ingredients that hit a stated preference.
type Result struct {
	Safe     []string `json:"safe"`
	Moderate []string `json:"moderate"`
	Harmful  []string `json:"harmful"`
	Matches  []string `json:"matches"`
}

// Analyzer inspects an uploaded image. mimeType is the sniffed type of image.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (*Result, error)
}

// DefaultMockDelay is how long Mock pretends to work.
const DefaultMockDelay = 2 * time.Second

// Mock waits for Delay and returns MockResult regardless of the image.
type Mock struct {
	Delay time.Duration
}

func NewMock() *Mock {
	return &Mock{Delay: DefaultMockDelay}
}

func (m *Mock) Analyze(ctx context.Context, _ []byte, _ string) (*Result, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}
	return MockResult(), nil
}

// MockResult returns a fresh copy of the canned analysis.
func MockResult() *Result {
	return &Result{
		Safe:     []string{"Water", "Salt", "Organic Cane Sugar"},
		Moderate: []string{"Natural Flavors", "Citric Acid"},
		Harmful:  []string{"Red Dye 40", "High Fructose Corn Syrup"},
		Matches:  []string{"Sugar"},
	}
}

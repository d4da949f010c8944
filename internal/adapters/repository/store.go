// Package repository keeps the analyses of the current run.
package repository

import (
	"context"

	"github.com/okian/tiewatch/internal/domain/model"
)

// Store provides read/write access to analysed groups.
type Store interface {
	// Save stores the analysis of a group, replacing any earlier one.
	Save(ctx context.Context, a model.Analysis) error

	// Get returns the analysis of one group.
	// Returns ErrNotFound if the group was never saved.
	Get(ctx context.Context, id model.GroupID) (model.Analysis, error)

	// List returns every analysis in natural group order.
	List(ctx context.Context) []model.Analysis

	// Count returns the number of analysed groups.
	Count(ctx context.Context) int

	// Tally returns how many groups fall in each classification.
	Tally(ctx context.Context) map[model.Classification]int
}

package store

import (
	"context"

	"github.com/artpar/promoter/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store persists the promotion journal.
type Store interface {
	RecordPromotion(ctx context.Context, rec *domain.PromotionRecord) error
	GetPromotion(ctx context.Context, id string) (*domain.PromotionRecord, error)
	ListPromotions(ctx context.Context, opts ListOptions) ([]domain.PromotionRecord, error)

	// Lifecycle
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination and filtering options.
type ListOptions struct {
	Limit           int
	Offset          int
	ApplicationName string // empty matches every application
	GroupName       string // empty matches every group
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  20,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 20
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

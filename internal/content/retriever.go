// Package content loads creator content samples for downstream selection.
package content

import (
	"context"

	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
	"github.com/branddesk/branddesk-backend/internal/db/interfaces"
)

type Retriever struct {
	store  interfaces.ContentStore
	limit  int
	logger *zap.SugaredLogger
}

func NewRetriever(store interfaces.ContentStore, limit int, logger *zap.SugaredLogger) *Retriever {
	return &Retriever{store: store, limit: limit, logger: logger}
}

// ForField returns recent samples from creators covering the field, newest
// first. Retrieval is best effort: a storage error degrades to an empty
// candidate set so generation can proceed without grounding.
func (r *Retriever) ForField(ctx context.Context, field string) []entities.ContentSample {
	if field == "" {
		return nil
	}
	samples, err := r.store.ListByField(ctx, field, r.limit)
	if err != nil {
		r.logger.Warnw("Content retrieval failed, proceeding without samples",
			"field", field, "error", err)
		return nil
	}
	return samples
}

package worker

// Processes recost jobs from QueueRecost: after a material price change every
// active variant specification referencing the material gets its persisted
// total recomputed from current catalog prices.

import (
	"context"
	"encoding/json"

	"kraisys/internal/service"

	"github.com/rs/zerolog/log"
)

// RecostWorker recomputes variant specification totals after price changes.
type RecostWorker struct {
	specs service.SpecificationService
}

func NewRecostWorker(specs service.SpecificationService) *RecostWorker {
	return &RecostWorker{specs: specs}
}

// Process recomputes totals for all variants referencing the material.
func (w *RecostWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload RecostPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("recost_worker: invalid payload")
		return
	}
	if payload.MaterialID <= 0 {
		log.Warn().Msg("recost_worker: missing material_id - skipping")
		return
	}

	updated, err := w.specs.RecostByMaterial(ctx, payload.MaterialID)
	if err != nil {
		log.Error().Err(err).Int64("material_id", payload.MaterialID).Msg("recost_worker: recost failed")
		return
	}
	log.Info().
		Int64("material_id", payload.MaterialID).
		Int("variants_updated", updated).
		Msg("recost_worker: totals recomputed")
}

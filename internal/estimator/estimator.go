// Package estimator produces a PriceEstimate from a submission using one configured strategy.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"resalelens/server/config"
	"resalelens/server/internal/completion"
	"resalelens/server/internal/models"
)

// ErrCollaborator marks a failure of the external completion service
var ErrCollaborator = errors.New("completion service failed")

// Strategy estimates a resale price. Implementations must not keep per-request state.
type Strategy interface {
	Name() string
	Estimate(ctx context.Context, sub *models.ItemSubmission, rng *rand.Rand) (*models.PriceEstimate, error)
}

// New returns the strategy selected by cfg. The collaborator is only used by the external strategy.
func New(cfg *config.Config, collaborator completion.Collaborator) (Strategy, error) {
	switch cfg.Estimator.Strategy {
	case config.StrategyTemplate:
		return NewTemplate(config.GetTemplate), nil
	case config.StrategyKeyword:
		return NewKeywordRule(config.GetPriceRange), nil
	case config.StrategyExternal:
		if collaborator == nil {
			return nil, fmt.Errorf("%s strategy requires a completion collaborator", config.StrategyExternal)
		}
		return NewExternalModel(collaborator), nil
	default:
		return nil, fmt.Errorf("unknown estimator strategy %q", cfg.Estimator.Strategy)
	}
}

// internal/workers/providers/match-clinics/matcher.go
package matchclinics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dental-claims/internal/common/logger"
	"dental-claims/internal/models"
)

const TaskType = "match-clinics"

// MaxResults bounds every Find result.
const MaxResults = 5

var ErrCatalogQueryFailed = errors.New("catalog_query_failed")

// Specialty values meaning "any specialty".
var anySpecialty = map[string]bool{
	"":        true,
	"general": true,
	"geral":   true,
}

type Matcher struct {
	catalog Catalog
	logger  logger.Logger
}

func NewMatcher(catalog Catalog, log logger.Logger) *Matcher {
	return &Matcher{
		catalog: catalog,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Find returns up to MaxResults clinics accepting tier and offering specialty,
// in catalog order. location is accepted but not used for ranking.
func (m *Matcher) Find(ctx context.Context, location string, tier models.PlanTier, specialty string) ([]models.ClinicRecord, error) {
	specialty = strings.ToLower(strings.TrimSpace(specialty))
	wildcard := anySpecialty[specialty]

	query := specialty
	if wildcard {
		query = ""
	}

	candidates, err := m.catalog.Query(ctx, tier, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogQueryFailed, err)
	}

	matches := make([]models.ClinicRecord, 0, MaxResults)
	for _, c := range candidates {
		if !c.Accepts(tier) {
			continue
		}
		if !wildcard && !c.Offers(specialty) {
			continue
		}
		matches = append(matches, c)
		if len(matches) == MaxResults {
			break
		}
	}

	logger.FromContext(ctx, m.logger).Debug("clinic search completed", map[string]interface{}{
		"planTier":    tier,
		"specialty":   specialty,
		"candidates":  len(candidates),
		"matches":     len(matches),
		"hasLocation": location != "",
	})
	return matches, nil
}

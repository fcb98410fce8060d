package inputschema

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/partytracker/partytracker/runtime/metadata"
)

// Service answers input schema queries for one registry and root union.
// The schema is flattened once in NewService and shared by all callers.
type Service struct {
	registry *metadata.Registry
	schema   *InputSchema
}

// NewService describes and flattens root. It fails when root is unknown or
// is not a tagged union, so a misconfigured root aborts startup.
func NewService(registry *metadata.Registry, root string, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := registry.Describe(root)
	if err != nil {
		return nil, fmt.Errorf("describe input schema root: %w", err)
	}

	schema, err := FlattenRoot(data)
	if err != nil {
		return nil, fmt.Errorf("flatten %s: %w", root, err)
	}

	// Arms without a record behind them are dropped from the schema. Log them
	// so the omission is visible to operators.
	for _, label := range schema.Skipped() {
		logger.Warn("input schema variant has no record fields, skipping",
			zap.String("root", root),
			zap.String("variant", label),
		)
	}

	logger.Debug("input schema ready",
		zap.String("root", root),
		zap.Int("entries", schema.Len()),
	)

	return &Service{registry: registry, schema: schema}, nil
}

// GetInputSchema returns the flattened root union.
func (s *Service) GetInputSchema() *InputSchema {
	return s.schema
}

// Registry returns the registry the service was built from.
func (s *Service) Registry() *metadata.Registry {
	return s.registry
}

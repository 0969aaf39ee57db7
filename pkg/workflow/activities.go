package workflow

import (
	"context"
	"log/slog"

	"github.com/leowmjw/go-obs-query/pkg/engine"
)

// Activities executes engine queries on behalf of workflows. It holds the
// session store the queries run against.
type Activities struct {
	logger *slog.Logger
	store  *engine.Store
}

// NewActivities creates the activities implementation for one store.
func NewActivities(logger *slog.Logger, store *engine.Store) *Activities {
	return &Activities{logger: logger, store: store}
}

// ExecuteQueryActivity runs one named query against the store.
func (a *Activities) ExecuteQueryActivity(ctx context.Context, query engine.NamedRequest) (*engine.Result, error) {
	a.logger.Info("Executing query", "name", query.Name, "dataset", query.Dataset)
	result, err := a.store.Execute(query.Request)
	if err != nil {
		a.logger.Error("Query execution failed", "name", query.Name, "error", err)
		return nil, err
	}
	return result, nil
}

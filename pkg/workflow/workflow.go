// Package workflow runs batches of engine queries as a Temporal workflow,
// fanning each query out to an activity and collecting the results in
// request order. Single queries are cheap in-memory operations and run
// synchronously through pkg/http; this path exists for large backfills
// where retries and durability matter.
package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/leowmjw/go-obs-query/pkg/engine"
)

const (
	// TaskQueue is the Temporal task queue shared by workers and clients.
	TaskQueue = "obs-query-task-queue"

	// BatchWorkflowIDPrefix prefixes batch workflow IDs.
	BatchWorkflowIDPrefix = "obs-query-batch-"

	// ExecuteQueryActivityName is the registered name of the per-query
	// activity.
	ExecuteQueryActivityName = "ExecuteQueryActivity"
)

// BatchRequest is a list of named queries to run against one session store.
type BatchRequest struct {
	Queries []engine.NamedRequest `json:"queries"`
}

// QueryOutcome is the result of one query in a batch; exactly one of
// Result and Error is set.
type QueryOutcome struct {
	Name   string         `json:"name"`
	Result *engine.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// BatchResult collects the outcomes of a batch, in request order.
type BatchResult struct {
	Outcomes []QueryOutcome `json:"outcomes"`
	Failed   int            `json:"failed"`
}

// GenerateBatchWorkflowID returns the workflow ID for a batch run.
func GenerateBatchWorkflowID(sessionID string) string {
	return BatchWorkflowIDPrefix + sessionID
}

// BatchQueryWorkflow fans the batch's queries out over the query activity
// and assembles the outcomes. Results are collected in ascending request
// order regardless of activity completion order, so a batch is reproducible
// under any scheduling.
func BatchQueryWorkflow(ctx workflow.Context, request BatchRequest) (*BatchResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting batch query workflow", "queries", len(request.Queries))

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    3,
			BackoffCoefficient: 2.0,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	futures := make([]workflow.Future, len(request.Queries))
	for i, query := range request.Queries {
		futures[i] = workflow.ExecuteActivity(ctx, ExecuteQueryActivityName, query)
	}

	result := &BatchResult{Outcomes: make([]QueryOutcome, len(request.Queries))}
	for i, future := range futures {
		outcome := QueryOutcome{Name: request.Queries[i].Name}
		var queryResult *engine.Result
		if err := future.Get(ctx, &queryResult); err != nil {
			outcome.Error = fmt.Sprintf("query %q failed: %v", request.Queries[i].Name, err)
			result.Failed++
			logger.Error("Batch query failed", "name", request.Queries[i].Name, "error", err)
		} else {
			outcome.Result = queryResult
		}
		result.Outcomes[i] = outcome
	}

	logger.Info("Batch query workflow completed",
		"queries", len(request.Queries), "failed", result.Failed)
	return result, nil
}

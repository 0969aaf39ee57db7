// Package hcl parses query definition files into engine requests. Queries
// are declared as HCL blocks, one per named query:
//
//	query "fast_spikes" {
//	  dataset = "spikes"
//	  window  = [[0, 120]]
//
//	  where {
//	    dataset   = "speed"
//	    column    = 0
//	    op        = ">"
//	    threshold = 0.25
//	  }
//
//	  mark {
//	    dataset       = "speed"
//	    interpolation = "linear"
//	    merge_obs     = true
//	  }
//	}
package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/leowmjw/go-obs-query/pkg/engine"
)

type queryFile struct {
	Queries []queryBlock `hcl:"query,block"`
}

type queryBlock struct {
	Name    string         `hcl:"name,label"`
	Dataset string         `hcl:"dataset"`
	Window  *hcl.Attribute `hcl:"window,optional"`
	Where   *whereBlock    `hcl:"where,block"`
	Mark    *markBlock     `hcl:"mark,block"`
}

type whereBlock struct {
	Dataset   string  `hcl:"dataset"`
	Column    *int    `hcl:"column,optional"`
	Op        string  `hcl:"op"`
	Threshold float64 `hcl:"threshold"`
}

type markBlock struct {
	Dataset       string  `hcl:"dataset"`
	Interpolation *string `hcl:"interpolation,optional"`
	MergeObs      *bool   `hcl:"merge_obs,optional"`
}

// ParseQueries parses HCL content into engine requests, one per query
// block, in file order.
func ParseQueries(content []byte, filename string) ([]engine.NamedRequest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var parsed queryFile
	diags = gohcl.DecodeBody(file.Body, evalCtx, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body: %s", diags.Error())
	}

	requests := make([]engine.NamedRequest, 0, len(parsed.Queries))
	for _, q := range parsed.Queries {
		req := engine.Request{Dataset: q.Dataset}

		if q.Window != nil {
			windowVal, diags := q.Window.Expr.Value(evalCtx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("query %q: failed to evaluate window: %s", q.Name, diags.Error())
			}
			window, err := windowBounds(windowVal)
			if err != nil {
				return nil, fmt.Errorf("query %q: %w", q.Name, err)
			}
			req.Window = window
		}

		if q.Where != nil {
			spec := &engine.FilterSpec{
				Dataset:   q.Where.Dataset,
				Op:        q.Where.Op,
				Threshold: q.Where.Threshold,
			}
			if q.Where.Column != nil {
				spec.Column = *q.Where.Column
			}
			req.Where = spec
		}

		if q.Mark != nil {
			spec := &engine.MarkSpec{
				Dataset:  q.Mark.Dataset,
				MergeObs: q.Mark.MergeObs,
			}
			if q.Mark.Interpolation != nil {
				spec.Interpolation = *q.Mark.Interpolation
			}
			req.Mark = spec
		}

		requests = append(requests, engine.NamedRequest{Name: q.Name, Request: req})
	}

	return requests, nil
}

// windowBounds converts an HCL list-of-pairs value into [start, end] rows.
func windowBounds(val cty.Value) ([][2]float64, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsListType() && !val.Type().IsTupleType() {
		return nil, fmt.Errorf("window must be a list of [start, end] pairs")
	}

	var bounds [][2]float64
	for i, rowVal := range val.AsValueSlice() {
		if !rowVal.Type().IsListType() && !rowVal.Type().IsTupleType() {
			return nil, fmt.Errorf("window row %d must be a [start, end] pair", i)
		}
		pair := rowVal.AsValueSlice()
		if len(pair) != 2 {
			return nil, fmt.Errorf("window row %d has %d values, want 2", i, len(pair))
		}
		var row [2]float64
		for j, v := range pair {
			if v.Type() != cty.Number {
				return nil, fmt.Errorf("window row %d value %d is not a number", i, j)
			}
			f, _ := v.AsBigFloat().Float64()
			row[j] = f
		}
		bounds = append(bounds, row)
	}
	return bounds, nil
}

// IsHCL attempts to detect if the given content is in HCL format.
func IsHCL(content []byte) bool {
	_, err := hclsyntax.ParseConfig(content, "", hcl.Pos{Line: 1, Column: 1})
	return err == nil
}

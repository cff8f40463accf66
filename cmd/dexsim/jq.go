package main

import (
	"fmt"

	"github.com/itchyny/gojq"
)

// compileJQFilters parses and compiles a set of jq filter expressions.
func compileJQFilters(filters []string) ([]*gojq.Code, error) {
	compiled := make([]*gojq.Code, len(filters))
	for i, filter := range filters {
		query, err := gojq.Parse(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
		}
		compiled[i], err = gojq.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
		}
	}
	return compiled, nil
}

// matchesJQFilters reports whether every compiled filter evaluates to a
// truthy value against v. A filter that yields no result or an error is a
// non-match.
func matchesJQFilters(codes []*gojq.Code, v interface{}) bool {
	for _, code := range codes {
		iter := code.Run(v)
		result, ok := iter.Next()
		if !ok {
			return false
		}
		if _, isErr := result.(error); isErr {
			return false
		}
		if !isTruthy(result) {
			return false
		}
	}
	return true
}

// isTruthy checks if a jq result value is truthy.
// In jq, false and null are falsy, everything else is truthy.
func isTruthy(v interface{}) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// filterTransactions keeps the transactions matching all compiled filters.
// With no filters the input is returned as is.
func filterTransactions(txs []map[string]interface{}, codes []*gojq.Code) []map[string]interface{} {
	if len(codes) == 0 {
		return txs
	}
	out := make([]map[string]interface{}, 0, len(txs))
	for _, tx := range txs {
		if matchesJQFilters(codes, map[string]interface{}(tx)) {
			out = append(out, tx)
		}
	}
	return out
}

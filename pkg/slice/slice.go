// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with the small
aggregations the dashboards need.
*/
package slice

// Count returns how many elements satisfy predicate.
func Count[T any](input []T, predicate func(T) bool) int {
	count := 0
	for _, v := range input {
		if predicate(v) {
			count++
		}
	}
	return count
}

// Reduce folds input into a single accumulated result.
func Reduce[T any, U any](input []T, initial U, reducer func(accumulator U, current T) U) U {
	result := initial
	for _, v := range input {
		result = reducer(result, v)
	}
	return result
}

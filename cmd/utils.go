package cmd

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// mapKeys returns the sorted keys of m
func mapKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

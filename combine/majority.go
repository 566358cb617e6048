// SPDX-License-Identifier: LGPL-3.0-or-later

// Package combine implements the threshold combiner (spec.md §4.E):
// aggregating per-node BLS and ECDSA shares into a single signature,
// and the "most common" aggregation shared by the dataSigned, response
// body and logs use sites (spec.md §9 design note).
package combine

import "sort"

// Majority returns the most frequent element of xs, with ties broken by
// lexicographic order of the value — spec.md §4.E "Tie-breaks". Ok is
// false only when xs is empty.
//
// Factoring this one generic helper keeps dataSigned selection and log
// aggregation from drifting out of sync, per spec.md §9's design note.
func Majority(xs []string) (value string, ok bool) {
	winners, _ := Tally(xs)
	if len(winners) == 0 {
		return "", false
	}
	return winners[0], true
}

// Tally counts occurrences of each distinct value in xs and returns the
// values tied for the highest count, lexicographically sorted, along
// with that count. An empty xs yields a nil slice and count 0.
func Tally(xs []string) (winners []string, count int) {
	if len(xs) == 0 {
		return nil, 0
	}

	counts := make(map[string]int, len(xs))
	for _, x := range xs {
		counts[x]++
	}

	best := 0
	for _, c := range counts {
		if c > best {
			best = c
		}
	}

	for v, c := range counts {
		if c == best {
			winners = append(winners, v)
		}
	}
	sort.Strings(winners)
	return winners, best
}

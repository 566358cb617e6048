// SPDX-License-Identifier: LGPL-3.0-or-later

// Package targeted implements the targeted-node selector (spec.md §4.K):
// deterministically hashing a payload identifier down to k of N node
// indices, so a caller can pin an action to a specific subset of nodes
// instead of fanning out to the whole network.
package targeted

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/sage-x-project/lit-coordinator/literr"
)

// SelectNodes picks k unique indices into nodeURLs, derived from ipfsID.
// For c = 0, 1, 2, ..., it hashes "c:ipfsID" with SHA-256 and reduces the
// digest mod len(nodeURLs), keeping the first k distinct indices seen —
// spec.md §4.K.
func SelectNodes(nodeURLs []string, ipfsID string, k int) ([]string, error) {
	n := len(nodeURLs)
	if n == 0 {
		return nil, literr.New(literr.InvalidArgumentException, "targeted: no node URLs")
	}
	if k <= 0 || k > n {
		return nil, literr.Newf(literr.InvalidArgumentException,
			"targeted: targetNodeRange %d out of bounds for %d nodes", k, n)
	}

	seen := make(map[int]bool, k)
	selected := make([]string, 0, k)

	for c := 0; len(selected) < k; c++ {
		digest := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", c, ipfsID)))
		idx := new(big.Int).Mod(new(big.Int).SetBytes(digest[:]), big.NewInt(int64(n)))
		i := int(idx.Int64())

		if seen[i] {
			continue
		}
		seen[i] = true
		selected = append(selected, nodeURLs[i])
	}

	return selected, nil
}

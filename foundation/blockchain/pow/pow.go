// Package pow implements the proof of work puzzle used to link blocks. A proof
// is valid for a block when the SHA-256 of the block's canonical string with the
// decimal proof appended starts with a number of zero hex characters.
package pow

import (
	"context"
	"crypto/sha256"
	"errors"
	"math"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// DefaultDifficulty is the number of leading zero hex characters a proof hash
// must have. Nodes and miners must agree on the value.
const DefaultDifficulty = 3

// MaxDifficulty is the largest difficulty a SHA-256 hex digest can express.
const MaxDifficulty = sha256.Size * 2

// ErrProofSpaceExhausted is returned when no proof exists in the uint64 range.
var ErrProofSpaceExhausted = errors.New("proof space exhausted")

// ErrInvalidDifficulty is returned when the difficulty can't be satisfied.
var ErrInvalidDifficulty = errors.New("invalid difficulty")

// =============================================================================

// IsValid reports whether the proof solves the puzzle for the block string.
func IsValid(blockString string, proof uint64, difficulty uint) bool {
	if difficulty > MaxDifficulty {
		return false
	}

	buf := make([]byte, 0, len(blockString)+20)
	buf = append(buf, blockString...)
	buf = strconv.AppendUint(buf, proof, 10)

	return isHashSolved(difficulty, sha256.Sum256(buf))
}

// Search performs a brute force scan starting at zero and returns the smallest
// proof that solves the puzzle for the block string. The search can be
// cancelled through the context.
func Search(ctx context.Context, blockString string, difficulty uint) (uint64, error) {
	if difficulty > MaxDifficulty {
		return 0, ErrInvalidDifficulty
	}

	buf := make([]byte, 0, len(blockString)+20)
	buf = append(buf, blockString...)
	base := len(buf)

	for proof := uint64(0); ; proof++ {
		if proof%checkInterval == 0 && ctx.Err() != nil {
			return 0, ctx.Err()
		}

		buf = strconv.AppendUint(buf[:base], proof, 10)
		if isHashSolved(difficulty, sha256.Sum256(buf)) {
			return proof, nil
		}

		if proof == math.MaxUint64 {
			return 0, ErrProofSpaceExhausted
		}
	}
}

// SearchParallel partitions the proof space across workers by stride and
// returns the smallest proof that solves the puzzle, the same value Search
// returns. A workers value less than 1 uses the number of CPUs.
func SearchParallel(ctx context.Context, blockString string, difficulty uint, workers int) (uint64, error) {
	if difficulty > MaxDifficulty {
		return 0, ErrInvalidDifficulty
	}

	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers == 1 {
		return Search(ctx, blockString, difficulty)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// best holds the smallest solution found so far. A worker stops once its
	// next candidate is larger than best since it can't improve on it.
	var best atomic.Uint64
	best.Store(math.MaxUint64)
	var found atomic.Bool

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func(start uint64) {
			defer wg.Done()

			buf := make([]byte, 0, len(blockString)+20)
			buf = append(buf, blockString...)
			base := len(buf)

			stride := uint64(workers)
			var checks uint64
			for proof := start; proof <= best.Load(); proof += stride {
				checks++
				if checks%checkInterval == 0 && ctx.Err() != nil {
					return
				}

				buf = strconv.AppendUint(buf[:base], proof, 10)
				if !isHashSolved(difficulty, sha256.Sum256(buf)) {
					if proof > math.MaxUint64-stride {
						return
					}
					continue
				}

				found.Store(true)
				for {
					cur := best.Load()
					if proof >= cur || best.CompareAndSwap(cur, proof) {
						return
					}
				}
			}
		}(uint64(w))
	}

	wg.Wait()

	// A cancelled search may have stopped a worker short of a smaller proof.
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if !found.Load() {
		return 0, ErrProofSpaceExhausted
	}

	return best.Load(), nil
}

// =============================================================================

// checkInterval is how many hashes are computed between context checks.
const checkInterval = 1 << 14

// isHashSolved checks the hash to make sure it has a difficulty number of
// leading zero hex characters. Each byte holds two hex characters.
func isHashSolved(difficulty uint, hash [sha256.Size]byte) bool {
	for i := uint(0); i < difficulty; i++ {
		b := hash[i/2]
		if i%2 == 0 {
			b >>= 4
		}
		if b&0x0f != 0 {
			return false
		}
	}

	return true
}

package plagiarism

import "fmt"

// Fingerprint is the winnowed subset of a hash sequence. Values[i] is the
// hash selected at Positions[i], a zero-based index into the hash sequence.
type Fingerprint struct {
	Values    []uint64 `json:"values" bson:"values"`
	Positions []int    `json:"positions" bson:"positions"`
}

// Len returns the number of selected hashes.
func (f Fingerprint) Len() int {
	return len(f.Values)
}

// Validate checks that values and positions pair up and that no position
// is recorded twice.
func (f Fingerprint) Validate() error {
	if len(f.Values) != len(f.Positions) {
		return fmt.Errorf("%w: %d values but %d positions", ErrMalformedFingerprint, len(f.Values), len(f.Positions))
	}

	seen := make(map[int]struct{}, len(f.Positions))
	for _, p := range f.Positions {
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: position %d recorded twice", ErrMalformedFingerprint, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// Windows splits hashes into overlapping windows of w values, sliding by
// one. If w exceeds the sequence length the sequence is the only window.
func Windows(w int, hashes []uint64) ([][]uint64, error) {
	if w <= 0 {
		return nil, fmt.Errorf("%w: window size must be a positive integer, got %d", ErrInvalidArgument, w)
	}

	if w > len(hashes) {
		return [][]uint64{hashes}, nil
	}

	windows := make([][]uint64, 0, len(hashes)-w+1)
	for i := 0; i+w <= len(hashes); i++ {
		windows = append(windows, hashes[i:i+w])
	}
	return windows, nil
}

// RightMin returns the minimum of window and the largest index holding it.
func RightMin(window []uint64) (uint64, int, error) {
	if len(window) == 0 {
		return 0, -1, ErrEmptyWindow
	}

	minVal, minIdx := window[0], 0
	for i, v := range window {
		if v <= minVal {
			minVal, minIdx = v, i
		}
	}
	return minVal, minIdx, nil
}

// ComputeFingerprint winnows hashes with window size w: every window
// contributes its rightmost minimum unless an earlier window already
// selected that exact position.
//
// The minimum of each window is tracked with a monotonic deque of
// indices, so the whole pass is O(n) rather than O(n*w).
func ComputeFingerprint(w int, hashes []uint64) (Fingerprint, error) {
	if w <= 0 {
		return Fingerprint{}, fmt.Errorf("%w: window size must be a positive integer, got %d", ErrInvalidArgument, w)
	}

	fp := Fingerprint{
		Values:    make([]uint64, 0),
		Positions: make([]int, 0),
	}
	if len(hashes) == 0 {
		return fp, nil
	}
	if w > len(hashes) {
		w = len(hashes)
	}

	// deque holds indices whose values strictly increase front to back;
	// an equal value arriving later evicts the older index, which makes
	// the front the rightmost minimum.
	deque := make([]int, 0, w)
	last := -1

	for i, h := range hashes {
		for len(deque) > 0 && hashes[deque[len(deque)-1]] >= h {
			deque = deque[:len(deque)-1]
		}
		deque = append(deque, i)

		start := i - w + 1
		if start < 0 {
			continue
		}
		if deque[0] < start {
			deque = deque[1:]
		}

		// Selected positions never decrease, so comparing with the last
		// recorded one is the same as a membership test.
		pos := deque[0]
		if pos == last {
			continue
		}
		fp.Values = append(fp.Values, hashes[pos])
		fp.Positions = append(fp.Positions, pos)
		last = pos
	}

	return fp, nil
}

package plagiarism

import (
	"context"
	"fmt"

	"github.com/RishiKendai/winnow/internal/metrics"
	"github.com/RishiKendai/winnow/internal/models"
)

// Params are the winnowing thresholds: K is the noise threshold (k-gram
// length), T the guarantee threshold.
type Params struct {
	K        int
	T        int
	HashSize uint64
}

func (p Params) Validate() error {
	if p.K <= 0 {
		return fmt.Errorf("%w: k must be a positive integer, got %d", ErrInvalidArgument, p.K)
	}
	if p.T < p.K {
		return fmt.Errorf("%w: t must be greater than or equal to k, got t=%d k=%d", ErrInvalidArgument, p.T, p.K)
	}
	return ValidateHashSize(p.HashSize)
}

// WindowSize returns t - k + 1.
func (p Params) WindowSize() int {
	return p.T - p.K + 1
}

// DocumentFingerprint is a document's fingerprint together with the length,
// in characters, of the normalized text it was computed from.
type DocumentFingerprint struct {
	Fingerprint Fingerprint
	Length      int
}

// Engine fingerprints and compares normalized documents.
type Engine struct {
	cache Cache
	pool  *WorkerPool
}

// NewEngine creates an engine. A nil cache disables caching; a nil pool
// compares pairs on the calling goroutine.
func NewEngine(cache Cache, pool *WorkerPool) *Engine {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Engine{
		cache: cache,
		pool:  pool,
	}
}

// Fingerprint computes, or fetches from the cache, the fingerprint of doc.
func (e *Engine) Fingerprint(doc models.Document, params Params) (*DocumentFingerprint, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	digest := doc.Digest
	if digest == "" {
		digest = ContentDigest([]byte(doc.Content))
	}
	key := CacheKey{
		Digest:   digest,
		Language: doc.Language,
		K:        params.K,
		T:        params.T,
		HashSize: params.HashSize,
	}
	if cached, ok := e.cache.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	runes := []rune(doc.Content)
	hashes, err := RollingHashes(runes, params.K, params.HashSize)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", doc.Name, err)
	}
	fp, err := ComputeFingerprint(params.WindowSize(), hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint %s: %w", doc.Name, err)
	}

	result := &DocumentFingerprint{
		Fingerprint: fp,
		Length:      len(runes),
	}
	e.cache.Add(key, result)
	return result, nil
}

// Compare scores one pair of documents.
func (e *Engine) Compare(main, other models.Document, params Params) (*models.PairResult, error) {
	mainFP, err := e.Fingerprint(main, params)
	if err != nil {
		return nil, err
	}
	otherFP, err := e.Fingerprint(other, params)
	if err != nil {
		return nil, err
	}

	result, err := ComparePrints(mainFP, otherFP, params.K)
	if err != nil {
		return nil, err
	}
	result.Name = other.Name
	return result, nil
}

// ComparePrints matches two fingerprints and scores the coverage of each
// document. Matched positions are reported one-based.
func ComparePrints(main, other *DocumentFingerprint, k int) (*models.PairResult, error) {
	matches, err := MatchFingerprints(main.Fingerprint, other.Fingerprint)
	if err != nil {
		return nil, err
	}

	mainMatches := OneBased(matches.A)
	otherMatches := OneBased(matches.B)
	mainScore := SimilarityScore(mainMatches, k, main.Length)
	otherScore := SimilarityScore(otherMatches, k, other.Length)
	overall := OverallScore(mainScore, otherScore)

	return &models.PairResult{
		MainScore:    mainScore,
		OtherScore:   otherScore,
		Overall:      overall,
		Risk:         RiskLevel(overall),
		SharedHashes: SharedValues(main.Fingerprint, other.Fingerprint),
		MainMatches:  mainMatches,
		OtherMatches: otherMatches,
	}, nil
}

// pairJob compares the main fingerprint with one other document.
type pairJob struct {
	index  int
	name   string
	main   *DocumentFingerprint
	other  *DocumentFingerprint
	k      int
	result chan<- pairOutcome
}

type pairOutcome struct {
	index  int
	result *models.PairResult
	err    error
}

func (j *pairJob) Execute(ctx context.Context) error {
	result, err := ComparePrints(j.main, j.other, j.k)
	if result != nil {
		result.Name = j.name
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.result <- pairOutcome{index: j.index, result: result, err: err}:
		return err
	}
}

// CompareMany compares main against every document of others and returns
// one result per other document, in the same order. Documents sharing no
// fingerprint value with main are scored zero without running the matcher.
// Any error aborts the whole comparison.
func (e *Engine) CompareMany(ctx context.Context, main models.Document, others []models.Document, params Params) ([]models.PairResult, error) {
	mainFP, err := e.Fingerprint(main, params)
	if err != nil {
		return nil, err
	}

	otherFPs := make([]*DocumentFingerprint, len(others))
	for i, doc := range others {
		if otherFPs[i], err = e.Fingerprint(doc, params); err != nil {
			return nil, err
		}
	}

	results := make([]models.PairResult, len(others))
	for i, doc := range others {
		results[i] = models.PairResult{
			Name:         doc.Name,
			Risk:         RiskLevel(0),
			MainMatches:  []int{},
			OtherMatches: []int{},
		}
	}

	candidates := BuildHashIndex(otherFPs).Candidates(mainFP.Fingerprint.Values)
	if len(candidates) == 0 {
		return results, nil
	}

	if e.pool == nil {
		for _, i := range candidates {
			result, err := ComparePrints(mainFP, otherFPs[i], params.K)
			if err != nil {
				return nil, fmt.Errorf("failed to compare %s: %w", others[i].Name, err)
			}
			result.Name = others[i].Name
			results[i] = *result
		}
		return results, nil
	}

	outcomes := make(chan pairOutcome, len(candidates))
	for _, i := range candidates {
		job := &pairJob{
			index:  i,
			name:   others[i].Name,
			main:   mainFP,
			other:  otherFPs[i],
			k:      params.K,
			result: outcomes,
		}
		if err := e.pool.Submit(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to submit comparison: %w", err)
		}
	}

	for received := 0; received < len(candidates); received++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-e.pool.Done():
			return nil, ErrPoolClosed
		case out := <-outcomes:
			if out.err != nil {
				return nil, fmt.Errorf("failed to compare %s: %w", others[out.index].Name, out.err)
			}
			results[out.index] = *out.result
		}
	}

	return results, nil
}

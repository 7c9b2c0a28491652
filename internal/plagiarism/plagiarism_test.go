package plagiarism

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/RishiKendai/winnow/internal/models"
	"github.com/RishiKendai/winnow/internal/preprocess"
)

func prepare(t *testing.T, name, lang, content string) models.Document {
	t.Helper()
	doc, err := preprocess.NewService(0).Prepare(models.DocumentInput{Name: name, Language: lang, Content: content})
	if err != nil {
		t.Fatalf("prepare %s: %v", name, err)
	}
	return doc
}

const sampleSource = `int sum(int *xs, int n) {
	int total = 0;
	for (int i = 0; i < n; i++) {
		total += xs[i];
	}
	return total;
}`

func TestEngineCompareIdentical(t *testing.T) {
	engine := NewEngine(nil, nil)
	doc := prepare(t, "a.c", "c", sampleSource)

	// With k == t every k-gram is selected, so a copy is fully covered.
	res, err := engine.Compare(doc, doc, Params{K: 5, T: 5, HashSize: DefaultHashSize})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if res.MainScore != 1 || res.OtherScore != 1 || res.Overall != 1 {
		t.Fatalf("expect full similarity, got %+v", res)
	}
	if res.Risk != "near copy" {
		t.Fatalf("expect near copy, got %q", res.Risk)
	}
	if res.MainMatches[0] != 1 {
		t.Fatalf("expect one-based matches, got %v", res.MainMatches)
	}
}

func TestEngineCompareIgnoresCommentsAndLayout(t *testing.T) {
	engine := NewEngine(nil, nil)
	a := prepare(t, "a.c", "c", sampleSource)
	b := prepare(t, "b.c", "c", "/* copied */\n"+strings.ReplaceAll(strings.ToUpper(sampleSource), "\t", "    ")+" // done")

	res, err := engine.Compare(a, b, Params{K: 5, T: 8, HashSize: DefaultHashSize})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if res.Overall < 0.85 {
		t.Fatalf("expect a near copy after normalization, got %+v", res)
	}
}

func TestEngineCompareDisjoint(t *testing.T) {
	engine := NewEngine(nil, nil)
	a := prepare(t, "a.txt", "txt", strings.Repeat("a", 40))
	b := prepare(t, "b.txt", "txt", strings.Repeat("b", 40))

	res, err := engine.Compare(a, b, Params{K: 3, T: 5, HashSize: DefaultHashSize})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if res.Overall != 0 || res.Risk != "clean" || len(res.MainMatches) != 0 {
		t.Fatalf("expect no similarity, got %+v", res)
	}
}

func TestEngineInvalidParams(t *testing.T) {
	engine := NewEngine(nil, nil)
	doc := prepare(t, "a.txt", "txt", "hello world")

	cases := []Params{
		{K: 0, T: 5, HashSize: DefaultHashSize},
		{K: 5, T: 4, HashSize: DefaultHashSize},
		{K: 5, T: 8, HashSize: 0},
	}
	for _, p := range cases {
		if _, err := engine.Compare(doc, doc, p); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%+v: expect ErrInvalidArgument, got %v", p, err)
		}
	}
}

func TestEngineFingerprintUsesCache(t *testing.T) {
	cache, err := NewLRUCache(4)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	engine := NewEngine(cache, nil)
	doc := prepare(t, "a.c", "c", sampleSource)
	params := Params{K: 5, T: 8, HashSize: DefaultHashSize}

	first, err := engine.Fingerprint(doc, params)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	second, err := engine.Fingerprint(doc, params)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if first != second {
		t.Fatalf("expect the cached fingerprint on the second call")
	}
	if cache.Len() != 1 {
		t.Fatalf("expect 1 cached fingerprint, got %d", cache.Len())
	}

	params.T = 9
	if _, err := engine.Fingerprint(doc, params); err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if cache.Len() != 2 {
		t.Fatalf("expect a separate entry per parameter set, got %d", cache.Len())
	}
}

func compareManyFixture(t *testing.T) (models.Document, []models.Document) {
	main := prepare(t, "main.c", "c", sampleSource)
	others := []models.Document{
		prepare(t, "unrelated.txt", "txt", strings.Repeat("zq", 50)),
		prepare(t, "copy.c", "c", sampleSource),
		prepare(t, "partial.c", "c", "int unrelated(void) { return 42; }\n"+sampleSource[:60]),
		prepare(t, "empty.txt", "txt", ""),
	}
	return main, others
}

func TestEngineCompareMany(t *testing.T) {
	main, others := compareManyFixture(t)
	params := Params{K: 5, T: 8, HashSize: DefaultHashSize}

	sequential, err := NewEngine(nil, nil).CompareMany(context.Background(), main, others, params)
	if err != nil {
		t.Fatalf("compare many: %v", err)
	}
	if len(sequential) != len(others) {
		t.Fatalf("expect %d results, got %d", len(others), len(sequential))
	}
	for i, r := range sequential {
		if r.Name != others[i].Name {
			t.Fatalf("result %d: expect %s, got %s", i, others[i].Name, r.Name)
		}
	}

	if sequential[0].Overall != 0 || sequential[3].Overall != 0 {
		t.Fatalf("expect unrelated and empty documents to score 0, got %+v %+v", sequential[0], sequential[3])
	}
	if sequential[1].MainScore <= sequential[2].MainScore || sequential[2].MainScore <= 0 {
		t.Fatalf("expect copy > partial > 0, got copy=%v partial=%v", sequential[1].MainScore, sequential[2].MainScore)
	}

	pool := NewWorkerPool(context.Background(), 2)
	defer pool.Close()
	pooled, err := NewEngine(nil, pool).CompareMany(context.Background(), main, others, params)
	if err != nil {
		t.Fatalf("compare many with pool: %v", err)
	}
	if !reflect.DeepEqual(sequential, pooled) {
		t.Fatalf("pooled results differ\nsequential %+v\npooled     %+v", sequential, pooled)
	}
}

func TestEngineCompareManyMatchesCompare(t *testing.T) {
	main, others := compareManyFixture(t)
	params := Params{K: 4, T: 7, HashSize: DefaultHashSize}
	engine := NewEngine(nil, nil)

	results, err := engine.CompareMany(context.Background(), main, others, params)
	if err != nil {
		t.Fatalf("compare many: %v", err)
	}
	for i, other := range others {
		single, err := engine.Compare(main, other, params)
		if err != nil {
			t.Fatalf("compare %s: %v", other.Name, err)
		}
		if math.Abs(single.Overall-results[i].Overall) > 1e-12 || !reflect.DeepEqual(single.MainMatches, results[i].MainMatches) {
			t.Fatalf("%s: pruned result %+v differs from direct %+v", other.Name, results[i], single)
		}
	}
}

func TestEngineIdempotent(t *testing.T) {
	main, others := compareManyFixture(t)
	params := Params{K: 5, T: 8, HashSize: DefaultHashSize}
	engine := NewEngine(nil, nil)

	first, err := engine.CompareMany(context.Background(), main, others, params)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := engine.CompareMany(context.Background(), main, others, params)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expect identical results across runs")
	}
}

func TestEngineCompareManyClosedPool(t *testing.T) {
	main, others := compareManyFixture(t)
	pool := NewWorkerPool(context.Background(), 1)
	pool.Close()

	_, err := NewEngine(nil, pool).CompareMany(context.Background(), main, others, Params{K: 5, T: 8, HashSize: DefaultHashSize})
	if !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expect ErrPoolClosed, got %v", err)
	}
}

func TestEngineCompareManyDeadlineWhilePoolBusy(t *testing.T) {
	main, others := compareManyFixture(t)
	pool := NewWorkerPool(context.Background(), 1)
	release := saturatePool(t, pool)
	defer pool.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		_, err := NewEngine(nil, pool).CompareMany(ctx, main, others, Params{K: 5, T: 8, HashSize: DefaultHashSize})
		errc <- err
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expect context.DeadlineExceeded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expect CompareMany to give up once its deadline passed")
	}
}

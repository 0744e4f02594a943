package scorer

import (
	"math"
	"testing"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/feature"
)

var testRows = []feature.Row{
	{ID: "seed_1", Attrs: map[string]any{"age": 22, "height": 180, "speed": 85, "strength": 70, "skill": 80}},
	{ID: "seed_2", Attrs: map[string]any{"age": 25, "height": 175, "speed": 78, "strength": 82, "skill": 75}},
	{ID: "seed_3", Attrs: map[string]any{"age": 19, "height": 172, "speed": 90, "strength": 60, "skill": 78}},
	{ID: "seed_4", Attrs: map[string]any{"age": 28, "height": 185, "speed": 70, "strength": 88, "skill": 72}},
	{ID: "seed_5", Attrs: map[string]any{"age": 24, "height": 178, "speed": 82, "strength": 75, "skill": 85}},
}

var testQuery = map[string]any{"age": 21, "height": 179, "speed": 87, "strength": 72, "skill": 82}

func testPool(t *testing.T) *core.CandidatePool {
	t.Helper()
	return feature.BuildPool(core.DefaultSchema, testRows)
}

func ids(matches []core.ScoredMatch) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSimilarityScore(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"scaled", []float64{1, 2, 3}, []float64{2, 4, 6}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, 0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.5},
		{"zero query", []float64{0, 0}, []float64{1, 1}, 0},
		{"zero candidate", []float64{1, 1}, []float64{0, 0}, 0},
	}
	for _, tt := range tests {
		got := SimilarityScore(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: SimilarityScore = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCosineSimilarityLargeMagnitudes(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"opposite extremes", []float64{1e308, -1e308}, []float64{1e308, -1e308}, 1},
		{"mixed sign", []float64{1e308, -1e308}, []float64{-1e308, 1e308}, -1},
		{"max float", []float64{math.MaxFloat64, math.MaxFloat64}, []float64{1, 1}, 1},
		{"orthogonal", []float64{1e308, 0}, []float64{0, 1e308}, 0},
		{"tiny", []float64{5e-324, 5e-324}, []float64{1, 1}, 1},
	}
	for _, tt := range tests {
		got := CosineSimilarity(tt.a, tt.b)
		if !finite(got) || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: CosineSimilarity = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDistanceScoreDecreasing(t *testing.T) {
	if got := DistanceScore(0); got != 1 {
		t.Fatalf("DistanceScore(0) = %v, want 1", got)
	}
	tests := []struct {
		near, far float64
	}{
		{0, 0.001},
		{0.5, 1},
		{1, 2},
		{10, 100},
		{1e6, 1e9},
	}
	for _, tt := range tests {
		near, far := DistanceScore(tt.near), DistanceScore(tt.far)
		if near <= far {
			t.Errorf("DistanceScore(%v) = %v, want > DistanceScore(%v) = %v", tt.near, near, tt.far, far)
		}
		if far <= 0 || near > 1 {
			t.Errorf("DistanceScore out of (0, 1]: %v, %v", near, far)
		}
	}
}

func TestSimilarityRankSeed(t *testing.T) {
	s, err := NewSimilarity(core.DefaultSchema, testPool(t))
	if err != nil {
		t.Fatalf("NewSimilarity: %v", err)
	}
	got, err := s.Rank(feature.Build(core.DefaultSchema, testQuery), 3)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	want := []string{"seed_1", "seed_5", "seed_3"}
	if !equalIDs(ids(got), want) {
		t.Fatalf("Rank ids = %v, want %v", ids(got), want)
	}
	for i, m := range got {
		if m.Score < 0 || m.Score > 1 {
			t.Errorf("score %v out of range", m.Score)
		}
		if i > 0 && got[i-1].Score < m.Score {
			t.Errorf("scores not descending: %v", got)
		}
	}
}

func TestSimilarityEmptyQuery(t *testing.T) {
	s, _ := NewSimilarity(core.DefaultSchema, testPool(t))
	got, err := s.Rank(feature.Build(core.DefaultSchema, map[string]any{}), 0)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != len(testRows) {
		t.Fatalf("len = %d, want %d", len(got), len(testRows))
	}
	for i, m := range got {
		if m.Score != 0 {
			t.Errorf("score = %v, want 0", m.Score)
		}
		// 全部并列时保持插入顺序
		if m.ID != testRows[i].ID {
			t.Errorf("tie order: got %s at %d, want %s", m.ID, i, testRows[i].ID)
		}
	}
}

func TestKNNRankSeed(t *testing.T) {
	k, err := FitKNN(core.DefaultSchema, testPool(t))
	if err != nil {
		t.Fatalf("FitKNN: %v", err)
	}
	q := feature.Build(core.DefaultSchema, testQuery)
	got, err := k.Rank(q, 10)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	want := []string{"seed_1", "seed_5", "seed_3", "seed_2", "seed_4"}
	if !equalIDs(ids(got), want) {
		t.Fatalf("Rank ids = %v, want %v", ids(got), want)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Errorf("scores not non-increasing: %v", got)
		}
	}
	if math.Abs(got[0].Score-1/(1+0.7043975090980462)) > 1e-9 {
		t.Errorf("top score = %v", got[0].Score)
	}

	again, _ := k.Rank(q, 10)
	for i := range got {
		if got[i] != again[i] {
			t.Fatalf("non-deterministic ranking: %v vs %v", got, again)
		}
	}
}

func TestKNNExactMatch(t *testing.T) {
	k, _ := FitKNN(core.DefaultSchema, testPool(t))
	got, err := k.Rank(feature.Build(core.DefaultSchema, testRows[3].Attrs), 1)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(got) != 1 || got[0].ID != "seed_4" || got[0].Score != 1 {
		t.Fatalf("exact match = %v, want seed_4 with score 1", got)
	}
}

func TestRankPool(t *testing.T) {
	k, _ := FitKNN(core.DefaultSchema, testPool(t))
	s, _ := NewSimilarity(core.DefaultSchema, testPool(t))
	q := feature.Build(core.DefaultSchema, testQuery)

	for _, b := range []Backend{k, s} {
		pool := core.NewCandidatePool(core.DefaultSchema)
		_ = pool.Add("x", core.FeatureVector{21, 179, 87, 72, 82})
		_ = pool.Add("y", core.FeatureVector{35, 160, 40, 40, 40})
		got, err := b.RankPool(q, pool, 5)
		if err != nil {
			t.Fatalf("%s RankPool: %v", b.Name(), err)
		}
		if len(got) != 2 || got[0].ID != "x" {
			t.Errorf("%s RankPool = %v, want x first", b.Name(), got)
		}

		empty, err := b.RankPool(q, core.NewCandidatePool(core.DefaultSchema), 5)
		if err != nil || len(empty) != 0 {
			t.Errorf("%s empty pool = %v, %v", b.Name(), empty, err)
		}

		if _, err := b.RankPool(q, core.NewCandidatePool(core.FeatureSchema{"age"}), 5); !core.IsInvalidInput(err) {
			t.Errorf("%s schema mismatch err = %v", b.Name(), err)
		}
		if _, err := b.Rank(core.FeatureVector{1}, 5); !core.IsInvalidInput(err) {
			t.Errorf("%s short query err = %v", b.Name(), err)
		}
	}
}

func TestTruncate(t *testing.T) {
	m := []core.ScoredMatch{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	if got := Truncate(m, 2); len(got) != 2 {
		t.Errorf("Truncate(2) len = %d", len(got))
	}
	if got := Truncate(m, 0); len(got) != 3 {
		t.Errorf("Truncate(0) len = %d", len(got))
	}
	if got := Truncate(m, 10); len(got) != 3 {
		t.Errorf("Truncate(10) len = %d", len(got))
	}
}

package model

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/feature"
	"github.com/rushteam/scoutmatch/store"
)

func TestTrainAndRoundTripFile(t *testing.T) {
	dir := t.TempDir()
	query := feature.Build(core.DefaultSchema, map[string]any{"age": 21, "height": 179, "speed": 87, "strength": 72, "skill": 82})

	for _, kind := range []string{core.BackendKNN, core.BackendSimilarity} {
		for _, name := range []string{kind + ".json", kind + ".yaml"} {
			snap, err := Train(kind, core.DefaultSchema, SeedRows())
			if err != nil {
				t.Fatalf("Train(%s): %v", kind, err)
			}
			path := filepath.Join(dir, name)
			if err := WriteFile(path, snap); err != nil {
				t.Fatalf("WriteFile(%s): %v", path, err)
			}
			loaded, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile(%s): %v", path, err)
			}

			want, _ := snap.Backend()
			got, err := loaded.Backend()
			if err != nil {
				t.Fatalf("Backend(%s): %v", path, err)
			}
			a, _ := want.Rank(query, 5)
			b, _ := got.Rank(query, 5)
			if len(a) != len(b) {
				t.Fatalf("%s: rank length %d vs %d", path, len(a), len(b))
			}
			for i := range a {
				if a[i] != b[i] {
					t.Fatalf("%s: rankings differ after reload: %v vs %v", path, a, b)
				}
			}
		}
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadFile(filepath.Join(dir, "nope.json")); !core.IsNotFound(err) {
		t.Fatalf("missing file err = %v, want NOT_FOUND", err)
	}

	corrupt := filepath.Join(dir, "knn.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadFile(corrupt)
	if err == nil || core.IsNotFound(err) {
		t.Fatalf("corrupt file err = %v, want load fault", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"kind":"knn","schema":["age"],"references":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(bad); err == nil {
		t.Fatal("knn snapshot without scaler should fail validation")
	}
}

func TestLoaders(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := store.NewMemoryStore()
	defer s.Close()

	knn, _ := TrainKNN(core.DefaultSchema, SeedRows())
	if err := WriteFile(filepath.Join(dir, "knn.json"), knn); err != nil {
		t.Fatal(err)
	}
	sim, _ := BuildSimilarity(core.DefaultSchema, SeedRows())
	sl := NewStoreLoader(s, "")
	if err := sl.Save(ctx, sim); err != nil {
		t.Fatalf("Save: %v", err)
	}

	chain := NewChainLoader(NewFileLoader(map[string]string{core.BackendKNN: filepath.Join(dir, "knn.json")}), sl, nil)

	snap, from, err := chain.LoadFrom(ctx, core.BackendKNN)
	if err != nil || snap.Kind != core.BackendKNN || from != "file" {
		t.Fatalf("knn load = %v from %q, err %v", snap, from, err)
	}
	snap, from, err = chain.LoadFrom(ctx, core.BackendSimilarity)
	if err != nil || snap.Kind != core.BackendSimilarity || from != "store:memory" {
		t.Fatalf("similarity load = %v from %q, err %v", snap, from, err)
	}

	empty := NewChainLoader(NewFileLoader(nil), NewStoreLoader(store.NewMemoryStore(), "x:"))
	if _, err := empty.Load(ctx, core.BackendKNN); !core.IsNotFound(err) {
		t.Fatalf("empty chain err = %v, want NOT_FOUND", err)
	}

	// 文件里是 knn 快照，却被配置为 similarity 路径
	wrong := NewFileLoader(map[string]string{core.BackendSimilarity: filepath.Join(dir, "knn.json")})
	if _, err := wrong.Load(ctx, core.BackendSimilarity); err == nil || core.IsNotFound(err) {
		t.Fatalf("kind mismatch err = %v, want load fault", err)
	}
}

func TestSeedSnapshotDeterministic(t *testing.T) {
	a, err := SeedSnapshot(core.BackendKNN, core.DefaultSchema)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := SeedSnapshot(core.BackendKNN, core.DefaultSchema)
	if len(a.References) != 5 || !a.TrainedAt.IsZero() {
		t.Fatalf("seed snapshot = %+v", a)
	}
	for i := range a.Scaler.Mean {
		if a.Scaler.Mean[i] != b.Scaler.Mean[i] || a.Scaler.Std[i] != b.Scaler.Std[i] {
			t.Fatal("seed scaler not deterministic")
		}
	}
	if _, err := SeedSnapshot("annoy", core.DefaultSchema); !core.IsInvalidInput(err) {
		t.Fatalf("unknown kind err = %v", err)
	}
	if _, err := TrainKNN(core.DefaultSchema, nil); !core.IsInvalidInput(err) {
		t.Fatalf("empty training err = %v", err)
	}
}

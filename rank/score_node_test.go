package rank

import (
	"context"
	"testing"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/profile"
	"github.com/rushteam/scoutmatch/recall"
	"github.com/rushteam/scoutmatch/registry"
)

func recallPlayers(t *testing.T, mctx *core.MatchContext) []*core.Item {
	t.Helper()
	src := profile.NewMemorySource()
	src.Put(profile.DemoProfiles()...)
	items, err := (&recall.ProfileRecall{Source: src}).Recall(context.Background(), mctx)
	if err != nil {
		t.Fatal(err)
	}
	return items
}

func TestScoreNodeOrdersByBackend(t *testing.T) {
	want := []string{"player_1", "player_5", "player_3", "player_2", "player_4", "player_6"}

	for _, backend := range []string{core.BackendKNN, core.BackendSimilarity} {
		t.Run(backend, func(t *testing.T) {
			mctx := &core.MatchContext{
				TargetRole: core.RolePlayer,
				Backend:    backend,
				Query:      map[string]any{"age": 21, "height": 179, "speed": 87, "strength": 72, "skill": 82},
			}
			node := &ScoreNode{Scorer: registry.New()}
			out, err := node.Process(context.Background(), mctx, recallPlayers(t, mctx))
			if err != nil {
				t.Fatal(err)
			}
			if len(out) != len(want) {
				t.Fatalf("len = %d, want %d", len(out), len(want))
			}
			for i, it := range out {
				if it.ID != want[i] {
					t.Fatalf("position %d = %s, want %s", i, it.ID, want[i])
				}
				if it.Score < 0 || it.Score > 1 {
					t.Fatalf("score %v out of range", it.Score)
				}
				if it.Labels["rank_backend"].Value != backend {
					t.Fatalf("rank_backend = %+v", it.Labels["rank_backend"])
				}
				if _, ok := it.Labels["rank_fallback"]; ok {
					t.Fatalf("unexpected fallback label on %s", it.ID)
				}
			}
			if out[0].Score <= out[len(out)-1].Score {
				t.Fatalf("scores not descending: %v .. %v", out[0].Score, out[len(out)-1].Score)
			}
		})
	}
}

func TestScoreNodeQueryFromUser(t *testing.T) {
	var club *core.Profile
	for _, p := range profile.DemoProfiles() {
		if p.ID == "club_1" {
			club = p
		}
	}
	mctx := &core.MatchContext{UserID: "club_1", User: club, TargetRole: core.RolePlayer, Backend: core.BackendKNN}

	out, err := (&ScoreNode{Scorer: registry.New()}).Process(context.Background(), mctx, recallPlayers(t, mctx))
	if err != nil {
		t.Fatal(err)
	}
	if out[0].ID != "player_1" {
		t.Fatalf("top = %s, want player_1", out[0].ID)
	}
	if pct, _ := out[0].Meta["match_percent"].(int); pct <= 0 || pct > 100 {
		t.Fatalf("match_percent = %v", out[0].Meta["match_percent"])
	}
}

func TestScoreNodeUnknownBackendFallsBack(t *testing.T) {
	mctx := &core.MatchContext{TargetRole: core.RolePlayer, Backend: "deep", Query: map[string]any{"age": 21}}
	out, err := (&ScoreNode{Scorer: registry.New()}).Process(context.Background(), mctx, recallPlayers(t, mctx))
	if err != nil {
		t.Fatal(err)
	}
	// 降级时按召回顺序打分
	if out[0].ID != "player_1" || out[0].Score != 0.85 || out[1].Score != 0.8 {
		t.Fatalf("fallback ranking = %s %v, %v", out[0].ID, out[0].Score, out[1].Score)
	}
	if out[0].Labels["rank_fallback"].Source != string(core.FaultUnknownBackend) {
		t.Fatalf("rank_fallback = %+v", out[0].Labels["rank_fallback"])
	}
	if lbl, ok := mctx.GetLabel("rank_fault"); !ok || lbl.Value != string(core.FaultUnknownBackend) {
		t.Fatalf("rank_fault = %+v", lbl)
	}
}

func TestScoreNodeEmpty(t *testing.T) {
	out, err := (&ScoreNode{Scorer: registry.New()}).Process(context.Background(), &core.MatchContext{}, nil)
	if err != nil || len(out) != 0 {
		t.Fatalf("out=%v err=%v", out, err)
	}
}

package recall

import (
	"context"
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/profile"
	"github.com/rushteam/scoutmatch/store"
)

func demoSource() *profile.MemorySource {
	src := profile.NewMemorySource()
	src.Put(profile.DemoProfiles()...)
	return src
}

func itemIDs(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestProfileRecall(t *testing.T) {
	r := &ProfileRecall{Source: demoSource()}
	mctx := &core.MatchContext{UserID: "player_2", TargetRole: core.RolePlayer}

	items, err := r.Process(context.Background(), mctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"player_1", "player_3", "player_4", "player_5", "player_6"}
	got := itemIDs(items)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	first := items[0]
	if first.Profile == nil || first.Profile.Name != "Marcus Silva" {
		t.Fatalf("profile not attached: %+v", first.Profile)
	}
	if first.Features["speed"] != 85 || first.Features["age"] != 22 {
		t.Fatalf("features = %v", first.Features)
	}
	if lbl := first.Labels["recall_source"]; lbl.Value != "recall.profile" {
		t.Fatalf("recall_source = %+v", lbl)
	}
}

func TestProfileRecallLimitAndAdmin(t *testing.T) {
	r := &ProfileRecall{Source: demoSource(), Limit: 2}

	items, err := r.Recall(context.Background(), &core.MatchContext{TargetRole: core.RolePlayer})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}

	items, err = r.Recall(context.Background(), &core.MatchContext{TargetRole: core.RoleAdmin})
	if err != nil || len(items) != 0 {
		t.Fatalf("admin recall = %v, %v", items, err)
	}
}

func TestFeatured(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	data, _ := json.Marshal([]string{"player_5", "club_1", "player_2", "missing"})
	if err := s.Set(ctx, "featured:player", data); err != nil {
		t.Fatal(err)
	}

	r := &Featured{Store: s, Key: "featured:{role}", Profiles: demoSource()}
	items, err := r.Recall(ctx, &core.MatchContext{UserID: "player_2", TargetRole: core.RolePlayer})
	if err != nil {
		t.Fatal(err)
	}
	// club_1 角色不符，player_2 是请求方本人，missing 不存在
	if got := itemIDs(items); len(got) != 1 || got[0] != "player_5" {
		t.Fatalf("got %v", got)
	}
}

func TestFeaturedFallbackIDs(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	r := &Featured{Store: s, Key: "featured:{role}", IDs: []string{"coach_1"}, Profiles: demoSource()}
	items, err := r.Recall(context.Background(), &core.MatchContext{TargetRole: core.RoleCoach})
	if err != nil {
		t.Fatal(err)
	}
	if got := itemIDs(items); len(got) != 1 || got[0] != "coach_1" {
		t.Fatalf("got %v", got)
	}
}

type staticSource struct {
	name  string
	ids   []string
	delay time.Duration
	err   error
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Recall(ctx context.Context, _ *core.MatchContext) ([]*core.Item, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*core.Item, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, core.NewItem(id))
	}
	return out, nil
}

func TestFanoutMergeOrder(t *testing.T) {
	n := &Fanout{
		Sources: []Source{
			&staticSource{name: "slow", ids: []string{"a", "b"}, delay: 20 * time.Millisecond},
			&staticSource{name: "fast", ids: []string{"b", "c"}},
			&staticSource{name: "broken", err: errors.New("down")},
		},
		Dedup: true,
	}

	for _, strategy := range []string{MergeFirst, MergePriority} {
		n.MergeStrategy = strategy
		items, err := n.Process(context.Background(), &core.MatchContext{}, nil)
		if err != nil {
			t.Fatal(err)
		}
		got := itemIDs(items)
		if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
			t.Fatalf("%s: got %v", strategy, got)
		}
		if lbl := items[1].Labels["recall_source"]; lbl.Value == "" {
			t.Fatalf("%s: missing recall_source label", strategy)
		}
	}

	n.MergeStrategy = MergeUnion
	items, err := n.Process(context.Background(), &core.MatchContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 4 {
		t.Fatalf("union len = %d, want 4", len(items))
	}
}

func TestFanoutTimeout(t *testing.T) {
	n := &Fanout{
		Sources: []Source{
			&staticSource{name: "hung", ids: []string{"x"}, delay: time.Second},
			&staticSource{name: "ok", ids: []string{"y"}},
		},
		Timeout:       10 * time.Millisecond,
		MaxConcurrent: 1,
	}
	items, err := n.Process(context.Background(), &core.MatchContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := itemIDs(items); len(got) != 1 || got[0] != "y" {
		t.Fatalf("got %v", got)
	}
}

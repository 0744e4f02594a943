package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/scoutmatch/core"
)

func scored(scores ...float64) []*core.Item {
	out := make([]*core.Item, len(scores))
	for i, s := range scores {
		it := core.NewItem(string(rune('a' + i)))
		it.Score = s
		out[i] = it
	}
	return out
}

func TestTopNNode(t *testing.T) {
	tests := []struct {
		name string
		n    int
		mctx *core.MatchContext
		want int
	}{
		{"explicit", 2, nil, 2},
		{"from context", 0, &core.MatchContext{TopN: 3}, 3},
		{"no limit", 0, &core.MatchContext{}, 4},
		{"larger than items", 10, nil, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := (&TopNNode{N: tt.n}).Process(context.Background(), tt.mctx, scored(0.9, 0.8, 0.7, 0.6))
			if err != nil {
				t.Fatal(err)
			}
			if len(out) != tt.want {
				t.Fatalf("len = %d, want %d", len(out), tt.want)
			}
		})
	}
}

func TestThresholdNode(t *testing.T) {
	node := &ThresholdNode{MinScore: 0.5}

	out, err := node.Process(context.Background(), &core.MatchContext{}, scored(0.9, 0.4, 0.5, 0.2))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		t.Fatalf("got %d items", len(out))
	}

	mctx := &core.MatchContext{Params: map[string]any{ParamMinScore: "0.85"}}
	out, err = node.Process(context.Background(), mctx, scored(0.9, 0.8))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
}

func TestReason(t *testing.T) {
	player := core.NewProfile("p", core.RolePlayer, "P")
	player.Attributes["position"] = "Forward"
	club := core.NewProfile("c", core.RoleClub, "C")
	agent := core.NewProfile("a", core.RoleAgent, "A")
	agent.Attributes["specialization"] = "youth transfers"
	coach := core.NewProfile("k", core.RoleCoach, "K")

	tests := []struct {
		p    *core.Profile
		want string
	}{
		{player, "Player with Forward matches your preferences"},
		{club, "Club in your region matches your career goals"},
		{agent, "Agent with experience in youth transfers could help your career"},
		{coach, "Coach specializing in your needs could improve your skills"},
	}
	for _, tt := range tests {
		if got := Reason(tt.p); got != tt.want {
			t.Errorf("Reason(%s) = %q, want %q", tt.p.Role, got, tt.want)
		}
	}
}

func TestReasonNode(t *testing.T) {
	club := core.NewProfile("club_1", core.RoleClub, "Ajax Amsterdam")
	club.Attributes["country"] = "Netherlands"
	it := core.NewItem("club_1")
	it.Profile = club

	out, err := (&ReasonNode{}).Process(context.Background(), &core.MatchContext{}, []*core.Item{it, core.NewItem("bare")})
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Meta["reason"] != "Club in Netherlands matches your career goals" {
		t.Fatalf("reason = %v", out[0].Meta["reason"])
	}
	if out[0].Meta["category"] != "club" || out[0].Meta["location"] != "Netherlands" {
		t.Fatalf("meta = %v", out[0].Meta)
	}
	if _, ok := out[1].Meta["reason"]; ok {
		t.Fatal("item without profile should not get a reason")
	}
}

func TestTopNNodeTruncatedLabel(t *testing.T) {
	mctx := &core.MatchContext{}
	out, err := (&TopNNode{N: 2}).Process(context.Background(), mctx, scored(0.9, 0.8, 0.7, 0.6))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if lbl, ok := mctx.GetLabel("truncated"); !ok || lbl.Value != "2" {
		t.Fatalf("truncated label = %+v", lbl)
	}
}

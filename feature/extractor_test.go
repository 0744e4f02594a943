package feature

import (
	"math"
	"testing"

	"github.com/rushteam/scoutmatch/core"
)

func TestMinMaxNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"empty", nil, []float64{}},
		{"equal", []float64{3, 3, 3}, []float64{0.5, 0.5, 0.5}},
		{"range", []float64{0, 5, 10}, []float64{0, 0.5, 1}},
	}
	for _, tt := range tests {
		got := MinMaxNormalize(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("%s: len = %d, want %d", tt.name, len(got), len(tt.want))
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-12 {
				t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
			}
		}
	}
}

func TestDerivedAttributes(t *testing.T) {
	if got := AgeNorm(27.5); got != 0.5 {
		t.Errorf("AgeNorm(27.5) = %v, want 0.5", got)
	}
	if got := AgeNorm(50); got != 1 {
		t.Errorf("AgeNorm(50) = %v, want 1", got)
	}
	if got := PositionCode(" Forward "); got != 0.9 {
		t.Errorf("PositionCode(forward) = %v, want 0.9", got)
	}
	if got := PositionCode("libero"); got != 0.5 {
		t.Errorf("PositionCode(libero) = %v, want 0.5", got)
	}
	if got := MatchPercent(0.876); got != 88 {
		t.Errorf("MatchPercent = %d, want 88", got)
	}
}

func TestDefaultProfileExtractor(t *testing.T) {
	player := core.NewProfile("p1", core.RolePlayer, "Ada")
	player.Attributes["age"] = 22
	player.Attributes["height"] = "180"
	player.Attributes["position"] = "midfielder"
	player.Stats["speed"] = 85
	player.Features["skill"] = 80

	attrs := ProfileAttributes(player)
	vec := Build(core.DefaultSchema, attrs)
	want := core.FeatureVector{22, 180, 85, 0, 80}
	for i := range want {
		if vec[i] != want[i] {
			t.Fatalf("player vector = %v, want %v", vec, want)
		}
	}
	if attrs["position_code"] != 0.6 {
		t.Errorf("position_code = %v, want 0.6", attrs["position_code"])
	}

	club := core.NewProfile("c1", core.RoleClub, "FC")
	club.Attributes["age"] = 120 // 俱乐部自身属性不参与打分
	club.Preferences["age"] = 21
	club.Preferences["speed"] = 90
	vec = Build(core.DefaultSchema, NewDefaultProfileExtractor(WithDerived(false)).Extract(club))
	if vec[0] != 21 || vec[2] != 90 {
		t.Fatalf("club vector = %v, want preferences", vec)
	}

	if got := ProfileAttributes(nil); len(got) != 0 {
		t.Fatalf("nil profile attrs = %v, want empty", got)
	}
}

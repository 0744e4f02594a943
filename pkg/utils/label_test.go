package utils

import (
	"reflect"
	"testing"
)

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{"empty existing", Label{}, Label{Value: "featured", Source: "recall"}, Label{Value: "featured", Source: "recall"}},
		{"empty incoming", Label{Value: "featured", Source: "recall"}, Label{}, Label{Value: "featured", Source: "recall"}},
		{"accumulate", Label{Value: "recall.profile", Source: "recall"}, Label{Value: "recall.featured", Source: "recall"}, Label{Value: "recall.profile|recall.featured", Source: "recall,recall"}},
		{"missing source", Label{Value: "a"}, Label{Value: "b", Source: "rank"}, Label{Value: "a|b", Source: "rank"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeLabel(tt.existing, tt.incoming); got != tt.want {
				t.Errorf("MergeLabel() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLabelValues(t *testing.T) {
	if got := (Label{}).Values(); got != nil {
		t.Errorf("Values() = %v, want nil", got)
	}
	got := Label{Value: "blacklist|user_block"}.Values()
	if want := []string{"blacklist", "user_block"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Values() = %v, want %v", got, want)
	}
}

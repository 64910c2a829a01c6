package entity

import (
	"testing"

	"github.com/ardld/polinews/internal/article"
)

func TestScore_CountsKeywordHits(t *testing.T) {
	folded := article.FoldText("Guvernul a adoptat ordonanța, premierul a anunțat-o la Palatul Victoria")
	scores := Score(folded)
	if scores[Government] < 3 {
		t.Errorf("Government score = %d, want at least 3", scores[Government])
	}
	if scores[Presidency] != 0 {
		t.Errorf("Presidency score = %d, want 0", scores[Presidency])
	}
}

func TestPickOwner(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Entity
	}{
		{
			name: "government text",
			text: "Guvernul a adoptat ordonanța privind pensiile, a anunțat premierul",
			want: Government,
		},
		{
			name: "presidency text",
			text: "Președintele a promulgat legea la Cotroceni",
			want: Presidency,
		},
		{
			name: "parliament text",
			text: "Moțiunea de cenzură a fost citită în plenul reunit, deputații au votat",
			want: Parliament,
		},
		{
			name: "local text",
			text: "Primarul a semnat contractul, consiliul local a aprobat bugetul local",
			want: Local,
		},
		{
			name: "no hits falls back to priority order",
			text: "Vremea se încălzește în weekend",
			want: Presidency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folded := article.FoldText(tt.text)
			if got := PickOwner(folded); got != tt.want {
				t.Errorf("PickOwner(%q) = %s, want %s", tt.text, got, tt.want)
			}
			// Determinism: repeated calls agree.
			for i := 0; i < 5; i++ {
				if got := PickOwner(folded); got != tt.want {
					t.Fatalf("PickOwner not deterministic, run %d returned %s", i, got)
				}
			}
		})
	}
}

func TestPickOwnerAmong(t *testing.T) {
	// Scored-best entity is a member: it wins.
	folded := article.FoldText("Guvernul a adoptat bugetul, ministrul a confirmat")
	if got := PickOwnerAmong(folded, []Entity{Parliament, Government}); got != Government {
		t.Errorf("got %s, want %s", got, Government)
	}

	// Scored-best entity is not a member: first member in priority order wins.
	if got := PickOwnerAmong(folded, []Entity{Opposition, Parliament}); got != Parliament {
		t.Errorf("got %s, want %s", got, Parliament)
	}

	// No keyword hits at all: still deterministic, highest-priority member.
	neutral := article.FoldText("Vremea se încălzește în weekend")
	if got := PickOwnerAmong(neutral, []Entity{Local, Opposition}); got != Opposition {
		t.Errorf("got %s, want %s", got, Opposition)
	}
}

func TestRankAndValid(t *testing.T) {
	if Rank(Presidency) >= Rank(Government) {
		t.Error("presidency should outrank government")
	}
	if Rank(Entity("necunoscut")) != len(PriorityOrder) {
		t.Error("unknown entity should sort last")
	}
	if !Valid(Coalition) || Valid(Entity("necunoscut")) {
		t.Error("Valid misclassified an entity")
	}
}

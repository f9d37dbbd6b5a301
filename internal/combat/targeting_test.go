package combat

import (
	"testing"

	"stratus-server/internal/domain"
)

func newRoster(t *testing.T) (*System, map[string]*Controller) {
	t.Helper()
	sys := NewSystem(nil)
	all := map[string]*Controller{
		"player":   NewController("player", domain.FactionPlayer, DefaultStats),
		"player2":  NewController("player2", domain.FactionPlayer, DefaultStats),
		"hostile":  NewController("hostile", domain.FactionHostile, DefaultStats),
		"neutral":  NewController("neutral", domain.FactionNeutral, DefaultStats),
		"friendly": NewController("friendly", domain.FactionFriendly, DefaultStats),
	}
	for _, name := range []string{"player", "player2", "hostile", "neutral", "friendly"} {
		sys.Add(all[name])
	}
	return sys, all
}

func names(cs []*Controller) map[string]bool {
	out := make(map[string]bool)
	for _, c := range cs {
		out[c.Name] = true
	}
	return out
}

func TestFindTargetsOfType(t *testing.T) {
	_, all := newRoster(t)

	tests := []struct {
		who   string
		param domain.TargetingParameter
		want  []string
	}{
		{"player", domain.TargetSelf, []string{"player"}},
		{"player", domain.TargetAlly, []string{"player", "player2"}},
		{"player", domain.TargetEnemy, []string{"hostile"}},
		{"hostile", domain.TargetAlly, []string{"hostile"}},
		{"hostile", domain.TargetEnemy, []string{"player", "player2"}},
		{"neutral", domain.TargetEnemy, []string{"player", "player2", "hostile"}},
		{"neutral", domain.TargetAlly, []string{"player", "player2", "hostile"}},
		{"friendly", domain.TargetAlly, []string{"friendly"}},
		{"friendly", domain.TargetEnemy, []string{"hostile"}},
	}

	for _, tt := range tests {
		t.Run(tt.who+"/"+tt.param.String(), func(t *testing.T) {
			got := names(all[tt.who].FindTargetsOfType(tt.param, domain.StateActive))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for _, n := range tt.want {
				if !got[n] {
					t.Errorf("missing %s in %v", n, got)
				}
			}
		})
	}
}

func TestFindTargetsOfType_FiltersByState(t *testing.T) {
	_, all := newRoster(t)
	all["player2"].OnDamage(1000)

	got := names(all["hostile"].FindTargetsOfType(domain.TargetEnemy, domain.StateActive))
	if got["player2"] || !got["player"] {
		t.Errorf("Expected only active players, got %v", got)
	}

	down := names(all["hostile"].FindTargetsOfType(domain.TargetEnemy, domain.StateInactive))
	if len(down) != 1 || !down["player2"] {
		t.Errorf("Expected inactive player2, got %v", down)
	}
}

func TestFindTargetsInRange(t *testing.T) {
	_, all := newRoster(t)
	all["hostile"].Position = domain.Vec3(0, 0, 0)
	all["player"].Position = domain.Vec3(3, 0, 4)
	all["player2"].Position = domain.Vec3(30, 0, 0)

	got := names(all["hostile"].FindTargetsInRange(domain.TargetEnemy, 5, domain.StateActive))
	if len(got) != 1 || !got["player"] {
		t.Errorf("Expected only player within 5 units, got %v", got)
	}

	near := Nearest(all["hostile"].FindTargetsOfType(domain.TargetEnemy, domain.StateActive), all["hostile"].Position)
	if near != all["player"] {
		t.Errorf("Nearest = %v, want player", near.Name)
	}
}

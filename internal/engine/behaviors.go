package engine

import (
	"fmt"

	"stratus-server/internal/ai"
	"stratus-server/internal/domain"
	"stratus-server/internal/skills"
)

// Поведения юнитов из каталога
const (
	BehaviorMelee  = "melee"
	BehaviorHealer = "healer"
	BehaviorIdle   = "idle"
)

// Пороги поведения, в процентах здоровья
const (
	defendBelow = 30.0
	healBelow   = 60.0
)

var lowHealthCondition = ai.MustCondition(fmt.Sprintf("(local.%s ?? 100) < %v", domain.BoardHealth, defendBelow))

// BuildTree собирает дерево поведения из навыков юнита.
//
// Ветки (в порядке приоритета для healer): защита при низком здоровье,
// оживление союзника, лечение раненого союзника, атака. melee не лечит
// и не оживляет. Ветки без подходящих навыков пропускаются.
func BuildTree(behavior string, set []*skills.Skill) (*ai.Tree, error) {
	var self, revive, heal, attack []*skills.Skill
	for _, s := range set {
		switch {
		case s.Targeting == domain.TargetSelf:
			self = append(self, s)
		case s.Targeting == domain.TargetAlly && s.TargetState == domain.StateInactive:
			revive = append(revive, s)
		case s.Targeting == domain.TargetAlly:
			heal = append(heal, s)
		default:
			attack = append(attack, s)
		}
	}

	root := ai.NewSelector(behavior)
	switch behavior {
	case BehaviorIdle, "":
		return ai.NewTree(BehaviorIdle, ai.NewWait("idle", 1)), nil
	case BehaviorMelee:
		addBranch(root, defendBranch(self))
		addBranch(root, attackBranch(attack))
	case BehaviorHealer:
		addBranch(root, defendBranch(self))
		addBranch(root, reviveBranch(revive))
		addBranch(root, healBranch(heal))
		addBranch(root, attackBranch(attack))
	default:
		return nil, fmt.Errorf("unknown behavior %q", behavior)
	}

	if len(root.Children()) == 0 {
		return ai.NewTree(behavior, ai.NewWait("idle", 1)), nil
	}
	tree := ai.NewTree(behavior, root)
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("behavior %s: %w", behavior, err)
	}
	return tree, nil
}

func addBranch(root *ai.Selector, branch ai.Node) {
	if branch != nil {
		root.Add(branch)
	}
}

// casts - попытка навыков по очереди.
// Последовательности с памятью: начатый каст не перепроверяет CanCast.
func casts(name string, set []*skills.Skill) ai.Node {
	sel := ai.NewSelector(name)
	for _, s := range set {
		seq := ai.NewSequence(s.Name, CanCast(s), CastSkill(s))
		seq.Memory = true
		sel.Add(seq)
	}
	return sel
}

func defendBranch(set []*skills.Skill) ai.Node {
	if len(set) == 0 {
		return nil
	}
	return ai.NewConditional("low health", lowHealthCondition, casts("defend", set))
}

func reviveBranch(set []*skills.Skill) ai.Node {
	if len(set) == 0 {
		return nil
	}
	return ai.NewSequence("revive", AcquireDownedAlly(), casts("revive skills", set))
}

func healBranch(set []*skills.Skill) ai.Node {
	if len(set) == 0 {
		return nil
	}
	return ai.NewSequence("heal", AcquireWoundedAlly(healBelow), casts("heal skills", set))
}

func attackBranch(set []*skills.Skill) ai.Node {
	if len(set) == 0 {
		return nil
	}
	seq := ai.NewSequence("attack",
		ai.NewSelector("target", HasTarget(domain.TargetEnemy), AcquireTarget(domain.TargetEnemy)),
		casts("attack skills", set),
	)
	seq.Attach(retarget(2))
	return seq
}

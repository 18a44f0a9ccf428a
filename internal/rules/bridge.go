package rules

import (
	"github.com/suderio/roundkeeper/internal/engine"
)

// ContextFromParticipant converts a participant into a map suitable for CEL
// evaluation.
func ContextFromParticipant(p engine.Participant) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"is_player":   p.IsPlayer,
		"hp":          p.HP,
		"max_hp":      p.MaxHP,
		"temp_hp":     p.TempHP,
		"armor_class": p.ArmorClass,
	}
}

// NewConditionEvaluator adapts the registry to the engine's trigger hook,
// binding the session context to the variables the environment declares.
func NewConditionEvaluator(reg *Registry) engine.ConditionFunc {
	return func(expr string, ctx engine.TriggerContext) (bool, error) {
		effectNames := make([]string, len(ctx.ActorEffects))
		for i, e := range ctx.ActorEffects {
			effectNames[i] = e.Name
		}

		participants := make([]map[string]any, len(ctx.Participants))
		for i, p := range ctx.Participants {
			participants[i] = ContextFromParticipant(p)
		}

		return reg.EvalBool(expr, map[string]any{
			"round":        ctx.Round,
			"turn":         ctx.Turn,
			"actor":        ContextFromParticipant(ctx.Actor),
			"effects":      effectNames,
			"participants": participants,
		})
	}
}

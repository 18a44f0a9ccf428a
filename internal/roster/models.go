package roster

import "github.com/suderio/roundkeeper/internal/engine"

// Member represents one combatant entry in a roster file.
type Member struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Player     bool   `json:"player" yaml:"player"`
	HitPoints  int    `json:"hit_points" yaml:"hit_points"`
	MaxHP      int    `json:"max_hp" yaml:"max_hp"`
	TempHP     int    `json:"temp_hp" yaml:"temp_hp"`
	ArmorClass int    `json:"armor_class" yaml:"armor_class"`
}

// Roster represents a named encounter party loaded via YAML.
type Roster struct {
	Name    string   `json:"name" yaml:"name"`
	Members []Member `json:"members" yaml:"members"`
}

// ToParticipants converts the roster members into engine participants.
// A member with no max_hp inherits its hit_points as the maximum.
func (r *Roster) ToParticipants() []engine.Participant {
	out := make([]engine.Participant, 0, len(r.Members))
	for _, m := range r.Members {
		maxHP := m.MaxHP
		if maxHP == 0 {
			maxHP = m.HitPoints
		}
		out = append(out, engine.Participant{
			ID:         m.ID,
			Name:       m.Name,
			IsPlayer:   m.Player,
			HP:         m.HitPoints,
			MaxHP:      maxHP,
			TempHP:     m.TempHP,
			ArmorClass: m.ArmorClass,
		})
	}
	return out
}

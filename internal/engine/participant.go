package engine

// Participant identifies a combatant for the lifetime of a session. Records
// are sourced from the host's participant store at combat start and never
// refreshed mid-combat.
type Participant struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsPlayer   bool   `json:"is_player"`
	HP         int    `json:"hp"`
	MaxHP      int    `json:"max_hp"`
	TempHP     int    `json:"temp_hp,omitempty"`
	ArmorClass int    `json:"armor_class"`
}

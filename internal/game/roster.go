package game

type Participant struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
	Reliability int    `json:"reliability"`
	Online      bool   `json:"isOnline"`
	IsAI        bool   `json:"isAI,omitempty"`
}

// Roster is the ordered list of turn-takers. Insertion order is turn order.
type Roster struct {
	members   []Participant
	turnIndex int
}

func NewRoster(members ...Participant) *Roster {
	r := &Roster{}
	for _, m := range members {
		r.Append(m)
	}
	return r
}

func (r *Roster) Current() Participant {
	if len(r.members) == 0 {
		return Participant{}
	}
	return r.members[r.turnIndex]
}

func (r *Roster) Advance() {
	if len(r.members) == 0 {
		return
	}
	r.turnIndex = (r.turnIndex + 1) % len(r.members)
}

func (r *Roster) Size() int { return len(r.members) }

func (r *Roster) TurnIndex() int { return r.turnIndex }

// Append adds a joiner at the end without touching the turn pointer. A uid
// already on the roster is ignored.
func (r *Roster) Append(p Participant) bool {
	if r.Contains(p.UID) {
		return false
	}
	r.members = append(r.members, p)
	return true
}

func (r *Roster) Contains(uid string) bool {
	for _, m := range r.members {
		if m.UID == uid {
			return true
		}
	}
	return false
}

// IsTurnOf reports whether uid may submit now. A lone writer always may.
func (r *Roster) IsTurnOf(uid string) bool {
	if len(r.members) == 1 {
		return r.members[0].UID == uid
	}
	return len(r.members) > 0 && r.Current().UID == uid
}

func (r *Roster) Members() []Participant {
	return append([]Participant(nil), r.members...)
}

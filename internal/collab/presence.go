package collab

import (
	"sort"
	"sync"
)

// Roster tracks who is connected to a board.
type Roster struct {
	mu           sync.RWMutex
	participants map[string]Participant // clientID -> participant
}

func NewRoster() *Roster {
	return &Roster{
		participants: make(map[string]Participant),
	}
}

func (r *Roster) Add(p Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[p.ClientID] = p
}

func (r *Roster) Remove(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.participants, clientID)
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// List returns the participants ordered by display name, then client id.
func (r *Roster) List() []Participant {
	r.mu.RLock()
	result := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		result = append(result, p)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].DisplayName != result[j].DisplayName {
			return result[i].DisplayName < result[j].DisplayName
		}
		return result[i].ClientID < result[j].ClientID
	})
	return result
}

func (r *Roster) Message() *Message {
	return newMessage(TypeUsersChanged, UsersChangedPayload{Users: r.List()})
}

package game

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"drawguess/internal/domain"
)

type Role int

const (
	RoleAnyone Role = iota
	RoleGuesser
	RolePainter
)

func (r Role) String() string {
	switch r {
	case RoleGuesser:
		return "guesser"
	case RolePainter:
		return "painter"
	default:
		return "anyone"
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "guesser":
		*r = RoleGuesser
	case "painter":
		*r = RolePainter
	case "anyone", "":
		*r = RoleAnyone
	default:
		return fmt.Errorf("unknown role %q", s)
	}
	return nil
}

// Relation binds a login to the game it currently plays.
type Relation struct {
	Login  string
	GameID int64
	Kind   domain.GameKind
	Role   Role
	Conn   Conn
	Seat   int
}

func (r Relation) PlayerInfo() PlayerInfo {
	return PlayerInfo{Login: r.Login, Seat: r.Seat}
}

// Directory maps logins to relations. At most one relation exists per login.
type Directory struct {
	mu        sync.RWMutex
	relations map[string]Relation
}

func NewDirectory() *Directory {
	return &Directory{relations: make(map[string]Relation)}
}

// AddRelation inserts or overwrites the relation of the login behind conn.
func (d *Directory) AddRelation(conn Conn, s *Session, role Role, seat int) Relation {
	rel := Relation{
		Login:  conn.Login(),
		GameID: s.ID(),
		Kind:   s.Kind(),
		Role:   role,
		Conn:   conn,
		Seat:   seat,
	}

	d.mu.Lock()
	d.relations[rel.Login] = rel
	d.mu.Unlock()

	return rel
}

func (d *Directory) GetRelation(login string) (Relation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rel, ok := d.relations[login]
	return rel, ok
}

func (d *Directory) RemoveRelation(login string) {
	d.mu.Lock()
	delete(d.relations, login)
	d.mu.Unlock()
}

// RemoveGameRelation removes the relation only while it still points at the given game.
func (d *Directory) RemoveGameRelation(login string, kind domain.GameKind, gameID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	rel, ok := d.relations[login]
	if !ok || rel.GameID != gameID || rel.Kind != kind {
		return false
	}
	delete(d.relations, login)
	return true
}

// GameRelations returns the relations of every participant of s, in seat order.
func (d *Directory) GameRelations(s *Session) []Relation {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Relation
	for _, rel := range d.relations {
		if rel.GameID == s.ID() && rel.Kind == s.Kind() {
			out = append(out, rel)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out
}

// GetGameSessions returns the connections of every participant of s.
func (d *Directory) GetGameSessions(s *Session) []Conn {
	rels := d.GameRelations(s)
	conns := make([]Conn, 0, len(rels))
	for _, rel := range rels {
		conns = append(conns, rel.Conn)
	}
	return conns
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.relations)
}

package user

import (
	"sort"
	"sync"
)

// Directory provides in-memory member storage keyed by member name, which
// is the value tasks carry in their assignee lists.
type Directory struct {
	members map[string]*Member
	mu      sync.RWMutex
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		members: make(map[string]*Member),
	}
}

// SeedTeam adds the demo team to the directory.
func (d *Directory) SeedTeam() {
	d.mu.Lock()
	defer d.mu.Unlock()

	team := []*Member{
		{ID: "member-1", Name: "alice", Email: "alice@example.com", Role: "engineer"},
		{ID: "member-2", Name: "bob", Email: "bob@example.com", Role: "engineer"},
		{ID: "member-3", Name: "carol", Email: "carol@example.com", Role: "designer"},
		{ID: "member-4", Name: "dave", Email: "dave@example.com", Role: "engineer"},
		{ID: "member-5", Name: "erin", Email: "erin@example.com", Role: "manager"},
	}
	for _, m := range team {
		d.members[m.Name] = m
	}
}

// FindByName finds a member by name.
func (d *Directory) FindByName(name string) (*Member, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, found := d.members[name]
	return m, found
}

// All returns every member sorted by name.
func (d *Directory) All() []Member {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Member, 0, len(d.members))
	for _, m := range d.members {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

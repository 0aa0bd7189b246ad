package engine

import (
	"fmt"
	"sync"
	"time"
)

// Registry owns the set of known hosts. It keeps insertion order and
// guarantees unique IDs; every mutation hands a full snapshot to the persist
// hook.
type Registry struct {
	mu      sync.RWMutex
	hosts   []Host
	now     func() time.Time
	persist func([]Host)
}

// RegionGroup is one partition of the registry. Groups appear in order of the
// first host seen in each region; hosts keep registry order.
type RegionGroup struct {
	Region string
	Hosts  []Host
}

// NewRegistry builds a registry over hosts (copied, duplicate IDs dropped).
func NewRegistry(hosts []Host) *Registry {
	r := &Registry{now: time.Now}
	r.hosts = dedupeByID(hosts)
	return r
}

// SetPersistHook installs fn to receive a snapshot after each mutation.
func (r *Registry) SetPersistHook(fn func([]Host)) {
	r.mu.Lock()
	r.persist = fn
	r.mu.Unlock()
}

// SetClock overrides the time source used to derive new IDs.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

// Add creates a host from p, filling unset fields with defaults. When p.ID is
// unset (or already taken) an ID is derived from the current time.
func (r *Registry) Add(p HostPatch) Host {
	r.mu.Lock()
	h := p.apply(Host{
		Name:   DefaultHostName,
		IP:     DefaultHostIP,
		Status: StatusOnline,
		Region: DefaultHostRegion,
	})
	base := ""
	if p.ID != nil && *p.ID != "" {
		base = *p.ID
	} else {
		base = fmt.Sprintf("h-%d", r.now().UnixMilli())
	}
	h.ID = r.uniqueIDLocked(base)
	r.hosts = append(r.hosts, h)
	snap, hook := r.snapshotLocked()
	r.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return h
}

// Update merges p into the host with the given id. It reports whether the
// host existed; a missing id is a no-op.
func (r *Registry) Update(id string, p HostPatch) bool {
	r.mu.Lock()
	i := r.indexLocked(id)
	if i < 0 {
		r.mu.Unlock()
		return false
	}
	r.hosts[i] = p.apply(r.hosts[i])
	snap, hook := r.snapshotLocked()
	r.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return true
}

// Remove deletes the host with the given id. A missing id is a no-op.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	i := r.indexLocked(id)
	if i < 0 {
		r.mu.Unlock()
		return false
	}
	r.hosts = append(r.hosts[:i:i], r.hosts[i+1:]...)
	snap, hook := r.snapshotLocked()
	r.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return true
}

// Replace swaps the whole host set without calling the persist hook. Used on
// hydrate.
func (r *Registry) Replace(hosts []Host) {
	r.mu.Lock()
	r.hosts = dedupeByID(hosts)
	r.mu.Unlock()
}

// List returns a copy of all hosts in insertion order.
func (r *Registry) List() []Host {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Host, len(r.hosts))
	copy(out, r.hosts)
	return out
}

// Len returns the number of hosts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hosts)
}

// Get returns the host with the given id.
func (r *Registry) Get(id string) (Host, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexLocked(id); i >= 0 {
		return r.hosts[i], true
	}
	return Host{}, false
}

// Lookup finds the first host whose name or ip equals token exactly.
func (r *Registry) Lookup(token string) (Host, bool) {
	if token == "" {
		return Host{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.hosts {
		if h.Name == token || h.IP == token {
			return h, true
		}
	}
	return Host{}, false
}

// ByRegion partitions the current hosts by region. It is recomputed on every
// call and never cached.
func (r *Registry) ByRegion() []RegionGroup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return GroupByRegion(r.hosts)
}

// GroupByRegion partitions hosts by Region, preserving order.
func GroupByRegion(hosts []Host) []RegionGroup {
	var groups []RegionGroup
	idx := make(map[string]int)
	for _, h := range hosts {
		i, ok := idx[h.Region]
		if !ok {
			i = len(groups)
			idx[h.Region] = i
			groups = append(groups, RegionGroup{Region: h.Region})
		}
		groups[i].Hosts = append(groups[i].Hosts, h)
	}
	return groups
}

func (r *Registry) indexLocked(id string) int {
	for i := range r.hosts {
		if r.hosts[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) uniqueIDLocked(base string) string {
	id := base
	for n := 2; r.indexLocked(id) >= 0; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

func (r *Registry) snapshotLocked() ([]Host, func([]Host)) {
	if r.persist == nil {
		return nil, nil
	}
	snap := make([]Host, len(r.hosts))
	copy(snap, r.hosts)
	return snap, r.persist
}

func dedupeByID(hosts []Host) []Host {
	seen := make(map[string]struct{}, len(hosts))
	out := make([]Host, 0, len(hosts))
	for _, h := range hosts {
		if _, ok := seen[h.ID]; ok {
			continue
		}
		seen[h.ID] = struct{}{}
		out = append(out, h)
	}
	return out
}

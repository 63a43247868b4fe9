package ws

// Registry maps a player identifier to its live connection. It is not safe
// for concurrent use; the Hub serializes access.
type Registry struct {
	entries map[string]registryEntry
}

type registryEntry struct {
	conn        Conn
	displayName string
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register binds id to conn, replacing any previous connection. An empty
// display name keeps the one already known for id.
func (r *Registry) Register(id string, conn Conn, displayName string) {
	if displayName == "" {
		displayName = r.entries[id].displayName
	}
	r.entries[id] = registryEntry{conn: conn, displayName: displayName}
}

func (r *Registry) Unregister(id string) {
	delete(r.entries, id)
}

func (r *Registry) Lookup(id string) (Conn, bool) {
	e, ok := r.entries[id]
	if !ok || e.conn == nil {
		return nil, false
	}
	return e.conn, true
}

// DisplayName falls back to the identifier when none was given.
func (r *Registry) DisplayName(id string) string {
	if name := r.entries[id].displayName; name != "" {
		return name
	}
	return id
}

func (r *Registry) Len() int {
	return len(r.entries)
}

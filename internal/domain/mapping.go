package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UsernameMapping maps extracted usernames to resolved player ids in the order
// the usernames were first seen. An empty PlayerID means the username did not
// resolve and is encoded as JSON null.
type UsernameMapping struct {
	order []string
	ids   map[string]PlayerID
}

func NewUsernameMapping() UsernameMapping {
	return UsernameMapping{ids: make(map[string]PlayerID)}
}

// Set records id for username. A repeated username keeps its first position
// and takes the latest id.
func (m *UsernameMapping) Set(username string, id PlayerID) {
	if m.ids == nil {
		m.ids = make(map[string]PlayerID)
	}
	if _, ok := m.ids[username]; !ok {
		m.order = append(m.order, username)
	}
	m.ids[username] = id
}

// With returns a copy of m with username set to id. m is left untouched.
func (m UsernameMapping) With(username string, id PlayerID) UsernameMapping {
	next := m.Clone()
	next.Set(username, id)
	return next
}

// Renamed returns a copy of m where oldName is replaced by newName, keeping
// its position. If oldName is absent newName is appended.
func (m UsernameMapping) Renamed(oldName, newName string, id PlayerID) UsernameMapping {
	next := m.Clone()
	if oldName == newName || !next.Has(oldName) {
		next.Set(newName, id)
		return next
	}
	if next.Has(newName) {
		next.Delete(newName)
	}
	for i, u := range next.order {
		if u == oldName {
			next.order[i] = newName
		}
	}
	delete(next.ids, oldName)
	next.ids[newName] = id
	return next
}

func (m *UsernameMapping) Delete(username string) {
	if _, ok := m.ids[username]; !ok {
		return
	}
	delete(m.ids, username)
	for i, u := range m.order {
		if u == username {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m UsernameMapping) Clone() UsernameMapping {
	next := UsernameMapping{
		order: make([]string, len(m.order)),
		ids:   make(map[string]PlayerID, len(m.ids)),
	}
	copy(next.order, m.order)
	for k, v := range m.ids {
		next.ids[k] = v
	}
	return next
}

// Get returns the id for username; ok is false for unknown or unresolved
// usernames.
func (m UsernameMapping) Get(username string) (PlayerID, bool) {
	id, ok := m.ids[username]
	return id, ok && id != ""
}

func (m UsernameMapping) Has(username string) bool {
	_, ok := m.ids[username]
	return ok
}

func (m UsernameMapping) Usernames() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m UsernameMapping) Len() int { return len(m.order) }

func (m UsernameMapping) Resolved() int {
	n := 0
	for _, id := range m.ids {
		if id != "" {
			n++
		}
	}
	return n
}

// ContainsID reports whether id is the resolved value of any username.
func (m UsernameMapping) ContainsID(id PlayerID) bool {
	if id == "" {
		return false
	}
	for _, v := range m.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (m UsernameMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, username := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(username)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if id := m.ids[username]; id != "" {
			val, err := json.Marshal(string(id))
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		} else {
			buf.WriteString("null")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *UsernameMapping) UnmarshalJSON(data []byte) error {
	next := NewUsernameMapping()
	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var id *string
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("username %q: %w", key, err)
		}
		if id != nil {
			next.Set(key, PlayerID(*id))
		} else {
			next.Set(key, "")
		}
		return nil
	})
	if err != nil {
		return err
	}
	*m = next
	return nil
}

// decodeOrderedObject walks a JSON object calling fn for every member in
// document order. A JSON null is treated as an empty object.
func decodeOrderedObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

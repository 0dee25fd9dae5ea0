// Package testutil provides shared record fixtures for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// PeopleSchema is a CUE schema for the people fixture.
const PeopleSchema = `package fixtures

#Person: {
	name:   string
	age:    int
	status: "active" | "suspended"
	tags: [...string]
	joined: string @sieve(datetime)
	address?: {
		city: string
	}
}
`

// PeopleDefinition names the definition in PeopleSchema.
const PeopleDefinition = "Person"

// PeopleYAML is the people fixture as a YAML record list. It holds the
// same records as People, in the same order.
const PeopleYAML = `- name: Ada
  age: 36
  status: active
  tags: [vip]
  joined: "2024-03-01"
  address:
    city: London
- name: Bob
  age: 17
  status: suspended
  tags: []
  joined: "2023-01-15"
- name: Cy
  age: 52
  status: active
  tags: [staff]
  joined: "2022-07-30"
  address:
    city: Oslo
- name: Dee
  age: 29
  status: active
  tags: []
  joined: "2021-11-02"
`

// People returns fresh copies of the people fixture records.
func People() []any {
	return []any{
		map[string]any{"name": "Ada", "age": 36, "status": "active", "tags": []any{"vip"}, "joined": "2024-03-01", "address": map[string]any{"city": "London"}},
		map[string]any{"name": "Bob", "age": 17, "status": "suspended", "tags": []any{}, "joined": "2023-01-15"},
		map[string]any{"name": "Cy", "age": 52, "status": "active", "tags": []any{"staff"}, "joined": "2022-07-30", "address": map[string]any{"city": "Oslo"}},
		map[string]any{"name": "Dee", "age": 29, "status": "active", "tags": []any{}, "joined": "2021-11-02"},
	}
}

// Names returns the name field of each record, in order.
func Names(records []any) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		if m, ok := r.(map[string]any); ok {
			name, _ := m["name"].(string)
			names = append(names, name)
		}
	}
	return names
}

// WriteFile writes content to name inside dir and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// WritePeople writes the people schema and records into a temp dir and
// returns their paths.
func WritePeople(t testing.TB) (schemaPath, dataPath string) {
	t.Helper()
	dir := t.TempDir()
	return WriteFile(t, dir, "people.cue", PeopleSchema), WriteFile(t, dir, "people.yaml", PeopleYAML)
}

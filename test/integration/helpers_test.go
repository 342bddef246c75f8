//go:build integration

package integration_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentx-labs/ctxloader/internal/handlers"
)

// testEnv holds paths to an isolated project.
type testEnv struct {
	ProjectDir string // contains ctxloader.yaml and app/
	SharedDir  string // a second discovery source
	ConfigPath string
}

const projectConfig = `version: 1.0.0
root: app
sources:
  - name: shared
    path: %s
log:
  level: error
loaders:
  - name: actions
    kind: flat
    patterns: ["actions/**/*.{yaml,json}"]
    warn_duplicates: true
  - name: services
    kind: namespaced
    patterns: ["services/*.yaml"]
  - name: routes
    kind: hierarchical
    patterns: ["routes/*.yaml"]
  - name: events
    kind: events
    patterns: ["events/*.yaml"]
  - name: features
    kind: features
    patterns: ["features/*.yaml"]
`

// setupTestEnv writes a project with one artifact set per loader kind.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		ProjectDir: t.TempDir(),
		SharedDir:  t.TempDir(),
	}
	env.ConfigPath = filepath.Join(env.ProjectDir, "ctxloader.yaml")

	writeFile(t, env.ProjectDir, "ctxloader.yaml", fmt.Sprintf(projectConfig, env.SharedDir))

	writeFile(t, env.ProjectDir, "app/actions/users.yaml", `- name: listUsers
  handler: users.list
- name: createUser
  handler: users.create
`)
	writeFile(t, env.ProjectDir, "app/actions/admin/ban.yaml", `name: banUser
handler: users.ban
`)
	writeFile(t, env.SharedDir, "actions/users.yaml", `- name: shadowed
  handler: users.list
`)
	writeFile(t, env.SharedDir, "actions/audit.json", `{"name": "auditTrail", "handler": "audit.record"}`)

	writeFile(t, env.ProjectDir, "app/services/users.yaml", `users:
  list: users.list
  create: users.create
`)
	writeFile(t, env.ProjectDir, "app/routes/users.yaml", `- name: api.users.list
  handler: users.list
- name: api.users.create
  handler: users.create
`)
	writeFile(t, env.ProjectDir, "app/events/users.yaml", `- name: user.created
  handler: audit.record
- name: user.created
  handler: users.ban
`)
	writeFile(t, env.ProjectDir, "app/features/users.yaml", `feature: users
typeComposers:
  User:
    fields:
      id: ID
queries:
  userById:
    resolve: users.list
`)
	writeFile(t, env.ProjectDir, "app/features/audit.yaml", `feature: audit
typeComposers:
  User:
    fields:
      lastSeen: Date
`)
	return env
}

func testHandlers() *handlers.Table {
	tbl := handlers.New()
	tbl.Register("users.list", func() []string { return []string{"ada", "linus"} })
	tbl.Register("users.create", func(name string) string { return name })
	tbl.Register("users.ban", func(name string) error { return nil })
	tbl.Register("audit.record", func(event string) {})
	return tbl
}

// writeFile creates a file at root/relPath, making parent directories.
func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	path := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", relPath, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", relPath, err)
	}
}

package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agentx-labs/ctxloader/internal/appctx"
	"github.com/agentx-labs/ctxloader/internal/compose"
	"github.com/agentx-labs/ctxloader/internal/config"
	"github.com/agentx-labs/ctxloader/internal/feature"
	"github.com/agentx-labs/ctxloader/internal/handlers"
	"github.com/agentx-labs/ctxloader/internal/loader"
	"github.com/agentx-labs/ctxloader/internal/registry"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func fixture(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/app/actions/users.yaml", `
- name: listUsers
  handler: users.list
- name: getUser
  handler: users.get
`)
	writeFile(t, fs, "/app/actions/legacy.yaml", `
billing:
  invoice: billing.invoice
`)
	writeFile(t, fs, "/app/events/login.yaml", `
- name: user.login
  handler: users.get
- name: user.login
  handler: billing.invoice
`)
	writeFile(t, fs, "/app/routes/admin.yaml", `
name: admin.users.list
handler: users.list
`)
	writeFile(t, fs, "/app/features/users.yaml", `
feature: users
queries:
  me:
    resolve: users.get
`)
	writeFile(t, fs, "/app/features/admin.yaml", `
feature: admin
queries:
  me:
    resolve: users.list
mutations:
  ban:
    resolve: users.list
`)
	return fs
}

func table() *handlers.Table {
	tbl := handlers.New()
	tbl.Register("users.list", func() string { return "list" })
	tbl.Register("users.get", func() string { return "get" })
	tbl.Register("billing.invoice", func() string { return "invoice" })
	return tbl
}

func testConfig(loaders ...config.LoaderConfig) *config.Config {
	return &config.Config{Version: "1.0.0", Root: "/app", Loaders: loaders}
}

func TestRun_AllKinds(t *testing.T) {
	cfg := testConfig(
		config.LoaderConfig{Name: "actions", Kind: config.KindFlat, Patterns: []string{"actions/*.yaml"}},
		config.LoaderConfig{Name: "namespaces", Kind: config.KindNamespaced, Patterns: []string{"actions/*.yaml"}},
		config.LoaderConfig{Name: "routes", Kind: config.KindHierarchical, Patterns: []string{"routes/**/*.yaml"}},
		config.LoaderConfig{Name: "events", Kind: config.KindEvents, Patterns: []string{"events/*.yaml"}, ContextKey: "on"},
		config.LoaderConfig{Name: "features", Kind: config.KindFeatures, Patterns: []string{"features/*.yaml"}},
	)

	c, report, err := Run(context.Background(), cfg, Deps{Fs: fixture(t), Handlers: table()})
	require.NoError(t, err)

	actions, ok := appctx.Lookup[registry.Flat](c, "actions")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"listUsers", "getUser", "invoice"}, keys(actions))

	namespaces, ok := appctx.Lookup[registry.NamespacedRegistry](c, "namespaces")
	require.True(t, ok)
	assert.Contains(t, namespaces, "billing")

	routes, ok := appctx.Lookup[registry.Tree](c, "routes")
	require.True(t, ok)
	admin, ok := routes["admin"].(map[string]any)
	require.True(t, ok, "got %T", routes["admin"])
	users, ok := admin["users"].(map[string]any)
	require.True(t, ok, "got %T", admin["users"])
	list, ok := users["list"].(func() string)
	require.True(t, ok, "got %T", users["list"])
	assert.Equal(t, "list", list())

	events, ok := appctx.Lookup[registry.Multimap](c, "on")
	require.True(t, ok)
	assert.Len(t, events["user.login"], 2)

	set, ok := appctx.Lookup[feature.Set](c, "features")
	require.True(t, ok)
	assert.Contains(t, set.Queries, "me")
	assert.Contains(t, set.Mutations, "ban")

	require.Len(t, report.Loaders, 5)
	assert.Equal(t, 3, report.Loaders[0].Entries)
	assert.Equal(t, "on", report.Loaders[3].Key)
	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, "me", report.Duplicates[0].Key)
	assert.Empty(t, report.Skipped())
}

func TestRun_StopsOnFailure(t *testing.T) {
	fs := fixture(t)
	writeFile(t, fs, "/app/broken/a.yaml", "name: a\nhandler: nobody\n")

	cfg := testConfig(
		config.LoaderConfig{Name: "actions", Kind: config.KindFlat, Patterns: []string{"actions/*.yaml"}},
		config.LoaderConfig{Name: "broken", Kind: config.KindFlat, Patterns: []string{"broken/*.yaml"}},
		config.LoaderConfig{Name: "events", Kind: config.KindEvents, Patterns: []string{"events/*.yaml"}},
	)

	c, report, err := Run(context.Background(), cfg, Deps{Fs: fs, Handlers: table()})
	require.Error(t, err)

	var stageErr *loader.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, "broken", stageErr.Loader)
	assert.Equal(t, loader.StageImport, stageErr.Stage)

	assert.True(t, c.Has("actions"))
	assert.False(t, c.Has("broken"))
	assert.False(t, c.Has("events"))
	require.Len(t, report.Loaders, 2)
	assert.NotEmpty(t, report.Loaders[1].Error)
}

func TestRun_SkipOnError(t *testing.T) {
	fs := fixture(t)
	writeFile(t, fs, "/app/broken/a.yaml", "name: a\nhandler: nobody\n")

	core, logs := observer.New(zapcore.WarnLevel)
	cfg := testConfig(
		config.LoaderConfig{Name: "broken", Kind: config.KindFlat, Patterns: []string{"broken/*.yaml"}, SkipOnError: true},
		config.LoaderConfig{Name: "events", Kind: config.KindEvents, Patterns: []string{"events/*.yaml"}},
	)

	c, report, err := Run(context.Background(), cfg, Deps{Fs: fs, Handlers: table(), Logger: zap.New(core)})
	require.NoError(t, err)

	assert.False(t, c.Has("broken"))
	assert.True(t, c.Has("events"))
	assert.Equal(t, []string{"broken"}, report.Skipped())
	assert.Equal(t, 1, logs.FilterMessage("loader failed, skipping").Len())
}

func TestRun_ContinueOnErrorSkipsBadFiles(t *testing.T) {
	fs := fixture(t)
	writeFile(t, fs, "/app/actions/zz-broken.yaml", "name: a\nhandler: nobody\n")

	cfg := testConfig(
		config.LoaderConfig{Name: "actions", Kind: config.KindFlat, Patterns: []string{"actions/*.yaml"}},
	)
	cfg.ContinueOnError = true

	c, _, err := Run(context.Background(), cfg, Deps{Fs: fs, Handlers: table()})
	require.NoError(t, err)

	actions, ok := appctx.Lookup[registry.Flat](c, "actions")
	require.True(t, ok)
	assert.NotContains(t, actions, "a")
	assert.Len(t, actions, 3)
}

func TestRun_EarlierSourceShadowsLater(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/app/actions/a.yaml", "name: a\nowner: local\n")
	writeFile(t, fs, "/shared/actions/a.yaml", "name: a\nowner: shared\n")
	writeFile(t, fs, "/shared/actions/b.yaml", "name: b\nowner: shared\n")

	cfg := testConfig(
		config.LoaderConfig{Name: "actions", Kind: config.KindFlat, Patterns: []string{"actions/*.yaml"}},
	)
	cfg.Sources = []config.SourceConfig{{Name: "shared", Path: "/shared"}}

	c, _, err := Run(context.Background(), cfg, Deps{Fs: fs})
	require.NoError(t, err)

	actions, _ := appctx.Lookup[registry.Flat](c, "actions")
	assert.Equal(t, "local", actions["a"]["owner"])
	assert.Equal(t, "shared", actions["b"]["owner"])
}

func TestRun_UnknownKind(t *testing.T) {
	cfg := testConfig(config.LoaderConfig{Name: "x", Kind: "graph"})
	_, _, err := Run(context.Background(), cfg, Deps{Fs: afero.NewMemMapFs()})
	assert.ErrorIs(t, err, config.ErrUnknownKind)
}

func TestRun_AppliesWrappersByName(t *testing.T) {
	var calls []string
	plugin := compose.Plugin{
		Name: "audit",
		Before: func(_ context.Context, c appctx.Context) (appctx.Context, error) {
			calls = append(calls, "before")
			return c.With("audited", true), nil
		},
		After: func(_ context.Context, c appctx.Context) (appctx.Context, error) {
			calls = append(calls, "after")
			return c, nil
		},
	}

	cfg := testConfig(
		config.LoaderConfig{Name: "actions", Kind: config.KindFlat, Patterns: []string{"actions/*.yaml"}},
		config.LoaderConfig{Name: "events", Kind: config.KindEvents, Patterns: []string{"events/*.yaml"}},
	)
	deps := Deps{
		Fs:       fixture(t),
		Handlers: table(),
		Wrappers: map[string][]compose.Wrapper{"events": {compose.WithPlugins(plugin)}},
		Initial:  appctx.New(map[string]any{"env": "test"}),
	}

	c, _, err := Run(context.Background(), cfg, deps)
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "after"}, calls)
	assert.True(t, c.Has("audited"))
	assert.True(t, c.Has("env"))
}

func TestRun_NoLoaders(t *testing.T) {
	initial := appctx.New(map[string]any{"env": "test"})
	c, report, err := Run(context.Background(), testConfig(), Deps{Initial: initial})
	require.NoError(t, err)
	assert.Equal(t, initial.Map(), c.Map())
	assert.Empty(t, report.Loaders)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

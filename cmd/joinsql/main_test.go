package main

import (
	"bytes"
	"context"
	stdsql "database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/syssam/joinsql"
)

const garageSQL = `SELECT "car"."id", "engine"."power", "person"."name" FROM "car"` +
	` JOIN "engine" ON "car"."engine_id" = "engine"."id"` +
	` LEFT JOIN "person" ON "car"."owner_id" = "person"."id"`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func testApp() *app {
	return &app{cfg: defaultConfig(), log: zap.NewNop(), cache: joinsql.NewMemoryCache()}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("JOINSQL_DIALECT=mysql\nJOINSQL_CACHE_TTL=1m\nJOINSQL_WORKERS=3\n"), 0o600))
	t.Setenv("JOINSQL_WORKERS", "5")
	t.Cleanup(func() {
		os.Unsetenv("JOINSQL_DIALECT")
		os.Unsetenv("JOINSQL_CACHE_TTL")
	})

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--env-file", envFile, "--dsn", "garage.db"}))
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Dialect)
	assert.Equal(t, "mysql", cfg.driverName())
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 100*time.Millisecond, cfg.SlowThreshold)
	assert.Equal(t, "garage.db", cfg.DSN)

	cmd = newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--env-file", envFile, "--dialect", "oracle"}))
	_, err = loadConfig(cmd)
	assert.EqualError(t, err, `unsupported dialect "oracle"`)

	cmd = newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--env-file", filepath.Join(dir, "missing.env")}))
	_, err = loadConfig(cmd)
	assert.ErrorContains(t, err, "load env file")
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("JOINSQL_SLOW_THRESHOLD", "soon")
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))
	_, err := loadConfig(cmd)
	assert.ErrorContains(t, err, "JOINSQL_SLOW_THRESHOLD")
}

func TestRender(t *testing.T) {
	out, err := execute(t, "render", "testdata/garage.yaml")
	require.NoError(t, err)
	assert.Equal(t, "-- testdata/garage.yaml\n"+garageSQL+";\n", out)

	out, err = execute(t, "render", "--from", "--dialect", "mysql", "testdata/garage.yaml")
	require.NoError(t, err)
	assert.Equal(t, "-- testdata/garage.yaml\n"+
		"`car` JOIN `engine` ON `car`.`engine_id` = `engine`.`id` LEFT JOIN `person` ON `car`.`owner_id` = `person`.`id`;\n", out)

	out, err = execute(t, "render", "testdata/broken.yaml", "testdata/garage.yaml")
	require.Error(t, err)
	assert.ErrorContains(t, err, "testdata/broken.yaml")
	assert.True(t, joinsql.IsValidationError(err))
	assert.Equal(t, "-- testdata/garage.yaml\n"+garageSQL+";\n", out)
}

func TestRenderFile_Cache(t *testing.T) {
	a := testApp()
	r, err := a.renderFile(context.Background(), "testdata/garage.yaml", true)
	require.NoError(t, err)
	assert.False(t, r.cached)
	r, err = a.renderFile(context.Background(), "testdata/garage.yaml", true)
	require.NoError(t, err)
	assert.True(t, r.cached)
	assert.Contains(t, r.sql, `"car" JOIN "engine"`)
}

func TestRenderFiles_Aggregate(t *testing.T) {
	dir := t.TempDir()
	nodialect := filepath.Join(dir, "nodialect.yaml")
	require.NoError(t, os.WriteFile(nodialect, []byte("name: x\nsource: {name: car}\n"), 0o600))

	var out bytes.Buffer
	err := testApp().renderFiles(context.Background(), &out, []string{"testdata/broken.yaml", nodialect, "testdata/garage.yaml"}, false)
	require.Error(t, err)
	var agg *joinsql.AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 2)
	assert.ErrorContains(t, agg.Errors[1], `no dialect for "x"`)
	assert.Contains(t, out.String(), garageSQL)
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "garage.msgpack")
	yml := filepath.Join(dir, "garage.yaml")

	_, err := execute(t, "convert", "testdata/garage.yaml", bin)
	require.NoError(t, err)
	_, err = execute(t, "convert", bin, yml)
	require.NoError(t, err)

	out, err := execute(t, "render", bin, yml)
	require.NoError(t, err)
	assert.Equal(t, "-- "+bin+"\n"+garageSQL+";\n-- "+yml+"\n"+garageSQL+";\n", out)

	_, err = execute(t, "convert", "testdata/missing.yaml", bin)
	assert.Error(t, err)
}

func garageDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "garage.db")
	db, err := stdsql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range []string{
		"CREATE TABLE person (id INTEGER PRIMARY KEY, name TEXT NOT NULL)",
		"CREATE TABLE engine (id INTEGER PRIMARY KEY, power INTEGER NOT NULL)",
		"CREATE TABLE car (id INTEGER PRIMARY KEY, engine_id INTEGER NOT NULL REFERENCES engine(id), owner_id INTEGER REFERENCES person(id))",
		"INSERT INTO person VALUES (1, 'ada')",
		"INSERT INTO engine VALUES (10, 150), (11, 90)",
		"INSERT INTO car VALUES (1, 10, 1), (2, 11, NULL)",
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

func TestInspect(t *testing.T) {
	dsn := garageDB(t)

	out, err := execute(t, "inspect", "--dialect", "sqlite", "--dsn", dsn, "--root", "car", "--path", "engine", "--path", "owner")
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "car" JOIN "engine" ON "car"."engine_id" = "engine"."id" LEFT JOIN "person" ON "car"."owner_id" = "person"."id";`+"\n", out)

	out, err = execute(t, "inspect", "--dialect", "sqlite", "--dsn", dsn, "--root", "car", "--graphql", "testdata/cars.graphql", "--run")
	require.NoError(t, err)
	assert.Contains(t, out, garageSQL+";\n")
	assert.Contains(t, out, "ada")
	assert.Contains(t, out, "NULL")
	assert.Regexp(t, `id\s+power\s+name`, out)

	_, err = execute(t, "inspect", "--dialect", "sqlite", "--dsn", dsn, "--root", "car", "--path", "wheels")
	assert.True(t, joinsql.IsNotFound(err))

	_, err = execute(t, "inspect", "--dsn", dsn, "--root", "car")
	assert.ErrorContains(t, err, "inspect requires a dialect")
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garage.yaml")
	data, err := os.ReadFile("testdata/garage.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- testApp().watch(ctx, &out, []string{path}, false) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), garageSQL)
	}, 5*time.Second, 10*time.Millisecond)

	changed := bytes.Replace(data, []byte("entity: person"), []byte("entity: people"), 1)
	require.NoError(t, os.WriteFile(path, changed, 0o600))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `LEFT JOIN "people" ON "car"."owner_id" = "people"."id"`)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

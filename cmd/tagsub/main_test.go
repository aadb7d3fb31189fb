package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacdonaldsmith/tagsub-go/internal/config"
	"github.com/rmacdonaldsmith/tagsub-go/internal/wire"
	"github.com/rmacdonaldsmith/tagsub-go/pkg/tagsub"
)

const testManifest = `
subscriptions:
  - name: everything
  - name: hello
    filter:
      hello: [world]
  - name: eu-orders
    filter:
      kind: [order]
      region: [eu]
`

const testEvents = `{"hello": "world"}
{"hello": "garbage"}
{"region": "eu", "kind": "order"}
`

func testConfig() *config.Config {
	return &config.Config{
		Strategy:           "tree",
		EventFormat:        "jsonl",
		LogLevel:           "error",
		LogFormat:          "json",
		BenchSubscriptions: 5,
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, cfg *config.Config, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(cfg)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, testConfig(), nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "tagsub v0.1.0\n", out)
}

func TestMatchCommand(t *testing.T) {
	manifestPath := writeFile(t, "subs.yaml", testManifest)
	want := strings.Join([]string{
		"event=0 subscription=everything",
		"event=0 subscription=hello",
		"event=1 subscription=everything",
		"event=2 subscription=everything",
		"event=2 subscription=eu-orders",
	}, "\n") + "\n"

	for _, strategy := range []string{"linear", "tree"} {
		t.Run(strategy, func(t *testing.T) {
			out, err := execute(t, testConfig(), strings.NewReader(testEvents),
				"match", "--strategy", strategy, "--subscriptions", manifestPath)
			require.NoError(t, err)
			assert.Equal(t, want, out)
		})
	}
}

func TestMatchCommand_EventsFile(t *testing.T) {
	manifestPath := writeFile(t, "subs.yaml", testManifest)
	eventsPath := writeFile(t, "events.jsonl", testEvents)

	out, err := execute(t, testConfig(), nil,
		"match", "--subscriptions", manifestPath, "--events", eventsPath)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, "\n"))
}

func TestMatchCommand_ProtoEvents(t *testing.T) {
	manifestPath := writeFile(t, "subs.yaml", testManifest)

	encoded, err := execute(t, testConfig(), strings.NewReader(testEvents), "encode")
	require.NoError(t, err)

	out, err := execute(t, testConfig(), strings.NewReader(encoded),
		"match", "--subscriptions", manifestPath, "--format", "proto")
	require.NoError(t, err)
	assert.Contains(t, out, "event=2 subscription=eu-orders")
	assert.Equal(t, 5, strings.Count(out, "\n"))
}

func TestEncodeDecodeCommands(t *testing.T) {
	encoded, err := execute(t, testConfig(), strings.NewReader(testEvents), "encode")
	require.NoError(t, err)

	decoded, err := execute(t, testConfig(), strings.NewReader(encoded), "decode")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(decoded, "\n"))

	events, err := wire.ReadAll(wire.NewJSONDecoder(strings.NewReader(decoded)))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, map[string]string{"hello": "world"}, events[0].Tags)
	assert.Equal(t, map[string]string{"region": "eu", "kind": "order"}, events[2].Tags)
}

func TestMatchCommand_TreeRejectsMultiValueFilter(t *testing.T) {
	manifestPath := writeFile(t, "subs.yaml", `
subscriptions:
  - name: eu-or-us
    filter:
      region: [eu, us]
`)

	_, err := execute(t, testConfig(), strings.NewReader(testEvents),
		"match", "--strategy", "tree", "--subscriptions", manifestPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, tagsub.ErrUnsupportedFilter)

	out, err := execute(t, testConfig(), strings.NewReader(`{"region": "us"}`),
		"match", "--strategy", "linear", "--subscriptions", manifestPath)
	require.NoError(t, err)
	assert.Equal(t, "event=0 subscription=eu-or-us\n", out)
}

func TestMatchCommand_InvalidEvent(t *testing.T) {
	manifestPath := writeFile(t, "subs.yaml", testManifest)

	_, err := execute(t, testConfig(), strings.NewReader(`{"count": 3}`),
		"match", "--subscriptions", manifestPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event 0")
}

func TestMatchCommand_RequiresSubscriptions(t *testing.T) {
	_, err := execute(t, testConfig(), strings.NewReader(testEvents), "match")
	assert.Error(t, err)
}

func TestRootCommand_InvalidStrategy(t *testing.T) {
	manifestPath := writeFile(t, "subs.yaml", testManifest)

	_, err := execute(t, testConfig(), strings.NewReader(testEvents),
		"match", "--strategy", "hash", "--subscriptions", manifestPath)
	assert.ErrorIs(t, err, tagsub.ErrUnknownStrategy)
}

func TestBenchCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping benchmark command in short mode")
	}

	out, err := execute(t, testConfig(), nil, "bench", "--subscriptions", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "STRATEGY")
	assert.Contains(t, out, "all-match")
	assert.Contains(t, out, "none-match")
	assert.Equal(t, 4, strings.Count(out, " ok\n"))
}

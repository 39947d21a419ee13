package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/matzehuels/exprgraph/pkg/errors"
	"github.com/matzehuels/exprgraph/pkg/exprfile"
	"github.com/matzehuels/exprgraph/pkg/observability"
)

func lossDocument() *exprfile.Document {
	return &exprfile.Document{
		Root: "L",
		Leaves: []exprfile.Leaf{
			{Label: "a", Value: 2},
			{Label: "b", Value: -3},
			{Label: "c", Value: 10},
			{Label: "f", Value: -2},
		},
		Ops: []exprfile.Operation{
			{Label: "e", Op: "*", Left: "a", Right: "b"},
			{Label: "d", Op: "+", Left: "e", Right: "c"},
			{Label: "L", Op: "*", Left: "d", Right: "f"},
		},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"DOT", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"dot", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"dot", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateRankDir(t *testing.T) {
	for _, dir := range []string{"", "TB", "LR", "BT", "RL"} {
		if err := ValidateRankDir(dir); err != nil {
			t.Errorf("ValidateRankDir(%q) = %v", dir, err)
		}
	}
	if err := ValidateRankDir("up"); err == nil {
		t.Error("ValidateRankDir(up) should fail")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	err := opts.ValidateAndSetDefaults()
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))

	opts = Options{Document: lossDocument()}
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, []string{FormatDOT}, opts.Formats)
	assert.Equal(t, 4, opts.Precision)
	assert.Equal(t, 1e-4, opts.Step)
	assert.Nil(t, opts.Logger)

	opts = Options{Document: lossDocument(), Inputs: map[string]float64{"bad name": 1}}
	assert.Equal(t, apperrors.ErrCodeInvalidLabel, apperrors.GetCode(opts.ValidateAndSetDefaults()))

	opts = Options{Document: lossDocument(), Precision: -1}
	assert.Error(t, opts.ValidateAndSetDefaults())

	opts = Options{Document: lossDocument(), Scale: -2}
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(opts.ValidateAndSetDefaults()))
}

func TestExecuteDOT(t *testing.T) {
	r := NewRunner(nil, nil)
	res, err := r.Execute(context.Background(), Options{Document: lossDocument()})
	require.NoError(t, err)

	assert.Equal(t, -8.0, res.Root.Data())
	assert.Equal(t, 10, res.Stats.NodeCount)
	assert.Equal(t, 9, res.Stats.EdgeCount)
	assert.Equal(t, 3, res.Stats.OperatorCount)
	assert.Equal(t, 3, res.Stats.Depth)
	assert.Len(t, res.Fingerprint, 16)

	assert.True(t, strings.HasPrefix(res.DOT, "digraph {\n    0 [ label = \"{ L| data: -8.0000 }\" shape=record]\n"))
	assert.Equal(t, res.DOT, string(res.Artifacts[FormatDOT]))
	assert.Nil(t, res.Partials)
}

func TestExecuteEstimate(t *testing.T) {
	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{
		Document: lossDocument(),
		Estimate: true,
		Formats:  []string{FormatDOT, FormatJSON},
	})
	require.NoError(t, err)

	require.Len(t, res.Partials, 4)
	assert.Equal(t, "a", res.Partials[0].Input)
	assert.InDelta(t, 6.0, res.Partials[0].Value, 1e-6)

	// Estimates turn on the grad segment.
	assert.Contains(t, res.DOT, `{ a| data: 2.0000 | grad 6.0000 }`)
	assert.Contains(t, res.DOT, `{ L| data: -8.0000 | grad 0.0000 }`)
	assert.Contains(t, string(res.Artifacts[FormatJSON]), `"kind": "operator"`)
}

func TestExecuteInputsOverride(t *testing.T) {
	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{
		Document: lossDocument(),
		Inputs:   map[string]float64{"f": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.Root.Data())

	_, err = NewRunner(nil, nil).Execute(context.Background(), Options{
		Document: lossDocument(),
		Inputs:   map[string]float64{"e": 1},
	})
	assert.Equal(t, apperrors.ErrCodeUnknownOperand, apperrors.GetCode(err))
}

func TestExecuteFromSource(t *testing.T) {
	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{
		Source:    filepath.Join("..", "..", "examples", "loss.toml"),
		ShowGrad:  true,
		Precision: 2,
		RankDir:   "LR",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.DOT, "digraph {\n    rankdir = \"LR\"\n    0 [ label = \"{ L| data: -8.00 | grad 0.00 }\" shape=record]\n"))
}

func TestExecuteMissingSource(t *testing.T) {
	_, err := NewRunner(nil, nil).Execute(context.Background(), Options{Source: filepath.Join(t.TempDir(), "nope.toml")})
	assert.Equal(t, apperrors.ErrCodeFileNotFound, apperrors.GetCode(err))
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil).Execute(ctx, Options{Document: lossDocument()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetTraceHooks(rec)
	defer observability.Reset()

	_, err := NewRunner(nil, nil).Execute(context.Background(), Options{Document: lossDocument()})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"build-start <document>",
		"build-complete L",
		"trace-start L",
		"trace-complete L",
		"render-start",
		"render-complete",
	}, rec.events)
	assert.Equal(t, 10, rec.traced)
}

func TestOutputURLs(t *testing.T) {
	assert.Equal(t,
		map[string]string{"dot": "out/loss.dot", "svg": "out/loss.svg"},
		OutputURLs("out/loss", "", []string{"dot", "svg"}))
	assert.Equal(t,
		map[string]string{"svg": "graph.svg"},
		OutputURLs("out/loss", "graph.svg", []string{"svg"}))
	assert.Equal(t,
		map[string]string{"dot": "dir/graph.dot", "json": "dir/graph.json"},
		OutputURLs("out/loss", "dir/graph.out", []string{"dot", "json"}))
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	urls := OutputURLs(filepath.Join(dir, "loss"), "", []string{"dot", "json"})
	written, err := WriteArtifacts(context.Background(), map[string][]byte{
		"dot":  []byte("digraph {\n}\n"),
		"json": []byte("{}"),
	}, urls)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "loss.dot"), filepath.Join(dir, "loss.json")}, written)

	data, err := os.ReadFile(filepath.Join(dir, "loss.dot"))
	require.NoError(t, err)
	assert.Equal(t, "digraph {\n}\n", string(data))
}

type recordingHooks struct {
	observability.NoopTraceHooks
	mu     sync.Mutex
	events []string
	traced int
}

func (h *recordingHooks) add(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, s)
}

func (h *recordingHooks) OnBuildStart(_ context.Context, source string) {
	h.add("build-start " + source)
}

func (h *recordingHooks) OnBuildComplete(_ context.Context, _, root string, _ time.Duration, _ error) {
	h.add("build-complete " + root)
}

func (h *recordingHooks) OnTraceStart(_ context.Context, root string) {
	h.add("trace-start " + root)
}

func (h *recordingHooks) OnTraceComplete(_ context.Context, root string, n int, _ time.Duration, _ error) {
	h.traced = n
	h.add("trace-complete " + root)
}

func (h *recordingHooks) OnRenderStart(context.Context, []string) { h.add("render-start") }

func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.add("render-complete")
}

func TestOptionsLoggerOverridesRunner(t *testing.T) {
	var runnerLogs, runLogs bytes.Buffer
	r := NewRunner(nil, log.New(&runnerLogs))

	_, err := r.Execute(context.Background(), Options{Document: lossDocument(), Logger: log.New(&runLogs)})
	require.NoError(t, err)
	assert.Empty(t, runnerLogs.String())
	assert.Contains(t, runLogs.String(), "traced graph")

	_, err = r.Execute(context.Background(), Options{Document: lossDocument()})
	require.NoError(t, err)
	assert.Contains(t, runnerLogs.String(), "built expression")
}

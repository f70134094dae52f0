package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xtding233/trdeg/internal/ladder"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDefaultsNormalize(t *testing.T) {
	p, err := Normalize(Defaults())
	require.NoError(t, err)

	assert.Equal(t, 200, p.StartStep)
	assert.Equal(t, 2, p.PromotionFactor)
	assert.Equal(t, 1.0, p.CeilingRatio)
	require.Len(t, p.Levels, 5)
	assert.Equal(t, LevelParams{Level: 7, Rank: ladder.Hou}, p.Levels[3])
	assert.Len(t, p.Efficiencies, 11)
	assert.Equal(t, []ladder.TableKind{ladder.Han4, ladder.Ton4}, p.Kinds)
	assert.Greater(t, p.Workers, 0)

	upper, ok := p.Tier("upper")
	require.True(t, ok)
	assert.Equal(t, EdgePinned, upper.Lower)
	assert.Equal(t, EdgeCeiling, upper.Upper)
	assert.False(t, upper.Points)

	_, ok = p.Tier("missing")
	assert.False(t, ok)
}

func TestLoaderMergesLayers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ladders", "default.yaml"), `
version: "2"
ladder:
  ceiling:
    return_ratio: 0.8
`)
	writeFile(t, filepath.Join(dir, "ladders", "tenhou.yaml"), `
sweep:
  efficiencies: [6.0, 6.2]
  workers: 3
`)
	writeFile(t, filepath.Join(dir, "ladders", "tenhou", "sweeps", "tonpuu.yaml"), `
sweep:
  kinds: [ton4]
`)

	l := NewLoader(dir)
	_, p, err := l.Resolve("tenhou", "tonpuu", Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "2", p.Version)
	assert.Equal(t, 0.8, p.CeilingRatio)
	assert.Equal(t, []float64{6.0, 6.2}, p.Efficiencies)
	assert.Equal(t, []ladder.TableKind{ladder.Ton4}, p.Kinds)
	assert.Equal(t, 3, p.Workers)
	assert.Len(t, p.Tiers, 3)

	ratio := 1.5
	effs := []float64{5.5}
	_, p, err = l.Resolve("tenhou", "tonpuu", Overrides{CeilingRatio: &ratio, Efficiencies: &effs})
	require.NoError(t, err)
	assert.Equal(t, 1.5, p.CeilingRatio)
	assert.Equal(t, []float64{5.5}, p.Efficiencies)
	assert.Equal(t, []ladder.TableKind{ladder.Ton4}, p.Kinds)
}

func TestLoaderMissingFilesUseDefaults(t *testing.T) {
	raw, err := NewLoader(t.TempDir()).LoadMerged("nowhere", "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), raw)
}

func TestLoaderWarnsOnMissingLadder(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	defer zap.ReplaceGlobals(zap.New(core))()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ladders", "tenhou.yaml"), "notes: here\n")
	l := NewLoader(dir)

	_, err := l.LoadMerged("tenhou", "")
	require.NoError(t, err)
	assert.Zero(t, logs.Len())

	_, err = l.LoadMerged("tenhuo", "")
	require.NoError(t, err)
	warned := logs.FilterMessage("ladder config not found, using defaults").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "tenhuo", warned[0].ContextMap()["ladder"])

	_, err = l.LoadMerged("tenhou", "fine")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("sweep config not found").Len())
}

func TestLoaderCacheAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ladders", "tenhou.yaml")
	writeFile(t, path, "notes: first\n")

	l := NewLoader(dir)
	raw, err := l.LoadMerged("tenhou", "")
	require.NoError(t, err)
	assert.Equal(t, "first", raw.Notes)

	writeFile(t, path, "notes: second\n")
	raw, err = l.LoadMerged("tenhou", "")
	require.NoError(t, err)
	assert.Equal(t, "first", raw.Notes)

	l.Invalidate()
	raw, err = l.LoadMerged("tenhou", "")
	require.NoError(t, err)
	assert.Equal(t, "second", raw.Notes)
}

func TestLoaderBadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ladders", "tenhou.yaml"), "ladder: [unclosed\n")
	_, err := NewLoader(dir).LoadMerged("tenhou", "")
	assert.Error(t, err)
}

func TestValidateRaw(t *testing.T) {
	bad := func(mut func(*RawConfig)) RawConfig {
		raw := Defaults()
		mut(&raw)
		return raw
	}
	zero, one := 0, 1
	negRatio := -1.0

	tests := []struct {
		name string
		raw  RawConfig
		msg  string
	}{{
		"start step",
		bad(func(r *RawConfig) { r.Ladder.StartStep = &zero }),
		"ladder.start_step",
	}, {
		"promotion factor",
		bad(func(r *RawConfig) { r.Ladder.PromotionFactor = &one }),
		"ladder.promotion_factor",
	}, {
		"unknown rank",
		bad(func(r *RawConfig) { r.Ladder.Levels[0].Rank = "gold" }),
		"unknown table rank",
	}, {
		"duplicate level",
		bad(func(r *RawConfig) { r.Ladder.Levels[1].Level = 4 }),
		"listed twice",
	}, {
		"ceiling ratio",
		bad(func(r *RawConfig) { r.Ladder.Ceiling.ReturnRatio = &negRatio }),
		"return_ratio",
	}, {
		"gap in tier",
		bad(func(r *RawConfig) { r.Tiers[0].Levels = []int{4, 6} }),
		"contiguous",
	}, {
		"tier level outside ladder",
		bad(func(r *RawConfig) { r.Tiers[0].Levels = []int{3, 4, 5, 6} }),
		"not in ladder.levels",
	}, {
		"entry outside tier",
		bad(func(r *RawConfig) { r.Tiers[0].Entry = 8 }),
		"tiers[0].entry",
	}, {
		"ceiling below",
		bad(func(r *RawConfig) { r.Tiers[0].LowerEdge = "ceiling" }),
		"lower_edge cannot be ceiling",
	}, {
		"unknown edge",
		bad(func(r *RawConfig) { r.Tiers[1].UpperEdge = "wall" }),
		"tiers[1].upper_edge",
	}, {
		"duplicate tier",
		bad(func(r *RawConfig) { r.Tiers[1].Name = "lower" }),
		"not unique",
	}, {
		"three player sweep",
		bad(func(r *RawConfig) { r.Sweep.Kinds = []string{"han3"} }),
		"three-player",
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateRaw(test.raw)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), test.msg), err.Error())
		})
	}

	assert.NoError(t, ValidateRaw(Defaults()))
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ladders", "tenhou.yaml")
	writeFile(t, path, "notes: a\n")

	var changes atomic.Int32
	w := NewFileWatcher([]string{path}, 10*time.Millisecond, func(string) { changes.Add(1) })
	w.Start()
	defer w.Stop()

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.Eventually(t, func() bool { return changes.Load() >= 1 }, time.Second, 10*time.Millisecond)
	w.Stop()
}

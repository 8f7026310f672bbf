package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/policysim/internal/app"
	"github.com/raysh454/policysim/internal/dataset"
	"github.com/raysh454/policysim/internal/model"
	"github.com/raysh454/policysim/internal/report"
	"github.com/raysh454/policysim/internal/testutil"
)

func newTestModel(t *testing.T, loaded bool) (Model, *testutil.DummySource) {
	t.Helper()
	return newTestModelContext(t, context.Background(), loaded)
}

func newTestModelContext(t *testing.T, ctx context.Context, loaded bool) (Model, *testutil.DummySource) {
	t.Helper()
	src := &testutil.DummySource{Dataset: testutil.ScenarioWithProbability()}
	store := dataset.NewStore(src, &testutil.DummyLogger{})
	if loaded {
		_, err := store.Reload(context.Background())
		require.NoError(t, err)
	}
	r, err := report.New(report.Options{MarkdownStyle: "notty", Width: 100})
	require.NoError(t, err)
	return New(ctx, app.NewDashboard(store, &testutil.DummyLogger{}), r, model.DefaultLevers()), src
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return nm, cmd
}

func TestNew_EvaluatesInitialView(t *testing.T) {
	m, _ := newTestModel(t, true)

	require.NoError(t, m.Err())
	require.NotNil(t, m.CurrentView())
	assert.Equal(t, -6.0, m.CurrentView().Metrics.NetChange)
	assert.Contains(t, m.View(), "Net MDR Change")
	assert.Contains(t, m.View(), "[x] Apply Targeted Therapy")
}

func TestNew_NoDataset(t *testing.T) {
	m, _ := newTestModel(t, false)

	assert.ErrorIs(t, m.Err(), app.ErrNoDataset)
	assert.Nil(t, m.CurrentView())
	assert.Contains(t, m.View(), app.ErrNoDataset.Error())
}

func TestUpdate_LeverKeys(t *testing.T) {
	m, _ := newTestModel(t, true)

	m, cmd := update(t, m, runes("t"))
	assert.Nil(t, cmd)
	assert.False(t, m.Levers().TherapyAdjustment)
	assert.Equal(t, 0.0, m.CurrentView().Metrics.NetChange)
	assert.Contains(t, m.View(), "[ ] Apply Targeted Therapy")

	m, _ = update(t, m, runes("t"))
	assert.True(t, m.Levers().TherapyAdjustment)
	assert.Equal(t, -6.0, m.CurrentView().Metrics.NetChange)

	m, _ = update(t, m, runes("a"))
	assert.False(t, m.Levers().AuditEffect)
	m, _ = update(t, m, runes("s"))
	assert.False(t, m.Levers().ASTEffect)
}

func TestUpdate_CursorToggle(t *testing.T) {
	m, _ := newTestModel(t, true)

	// Up from the first lever wraps to therapy.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.False(t, m.Levers().TherapyAdjustment)
	assert.True(t, m.Levers().AuditEffect)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Levers().AuditEffect)
}

func TestUpdate_Quit(t *testing.T) {
	m, _ := newTestModel(t, true)

	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := update(t, m, msg)
		require.NotNil(t, cmd, msg.String())
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit, msg.String())
	}
}

func TestUpdate_Reload(t *testing.T) {
	m, src := newTestModel(t, false)
	require.Error(t, m.Err())

	m, cmd := update(t, m, runes("r"))
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "reloading")

	m, _ = update(t, m, cmd())
	require.NoError(t, m.Err())
	assert.Contains(t, m.View(), "reloaded 3 records")
	assert.Equal(t, 1, src.Loads)
}

func TestUpdate_ReloadFailureKeepsView(t *testing.T) {
	m, src := newTestModel(t, true)
	src.SetErr(errors.New("disk gone"))

	m, cmd := update(t, m, runes("r"))
	m, _ = update(t, m, cmd())

	require.NoError(t, m.Err())
	assert.Equal(t, -6.0, m.CurrentView().Metrics.NetChange)
	assert.Contains(t, m.View(), "reload failed: disk gone")
}

func TestUpdate_ReloadUsesRunContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m, src := newTestModelContext(t, ctx, true)
	loads := src.Loads
	cancel()

	m, cmd := update(t, m, runes("r"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Contains(t, m.View(), "reload failed: context canceled")
	assert.Equal(t, loads, src.Loads)
	assert.Equal(t, -6.0, m.CurrentView().Metrics.NetChange)
}

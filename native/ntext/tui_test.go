package ntext

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchio/itch-bootstrap/progress"
)

func newTestTUI() *TUI {
	return &TUI{
		model: newTUIModel("itch", TUITexts{
			CancelHint:  "esc: cancel",
			ConfirmHint: "y/n",
			AckHint:     "enter: ok",
		}),
		mb: progress.NewMailbox(),
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func post(t *TUI, f func()) tea.Cmd {
	_, cmd := t.model.Update(postMsg(f))
	return cmd
}

func TestTUI_RendersState(t *testing.T) {
	tui := newTestTUI()
	post(tui, func() {
		tui.Render(progress.State{Message: "Downloading itch...", Value: 30, CancelVisible: true, CancelEnabled: true})
	})

	view := tui.model.View()
	assert.Contains(t, view, "itch")
	assert.Contains(t, view, "Downloading itch...")
	assert.Contains(t, view, "30%")
	assert.Contains(t, view, "esc: cancel")

	post(tui, func() {
		tui.Render(progress.State{Message: "Downloading itch...", Value: 30})
	})
	assert.NotContains(t, tui.model.View(), "esc: cancel")
}

func TestTUI_IndeterminateStartsSpinner(t *testing.T) {
	tui := newTestTUI()
	cmd := post(tui, func() {
		tui.Render(progress.State{Message: "Verifying...", Mode: progress.Indeterminate, Value: 30})
	})
	require.NotNil(t, cmd)
	assert.True(t, tui.model.spinning)
	assert.NotContains(t, tui.model.View(), "30%")

	// only one tick loop at a time
	assert.Nil(t, post(tui, func() {}))
}

func TestTUI_CancelKey(t *testing.T) {
	tui := newTestTUI()
	clicks := 0
	tui.OnCancel(func() { clicks++ })

	tui.model.Update(key("esc"))
	assert.Equal(t, 0, clicks, "no cancel button shown yet")

	post(tui, func() { tui.Render(progress.State{CancelVisible: true, CancelEnabled: true}) })
	tui.model.Update(key("esc"))
	assert.Equal(t, 1, clicks)
}

func TestTUI_ConfirmDialog(t *testing.T) {
	for _, tc := range []struct {
		key    string
		answer bool
	}{
		{"y", true},
		{"enter", true},
		{"n", false},
		{"esc", false},
	} {
		t.Run(tc.key, func(t *testing.T) {
			tui := newTestTUI()
			var answers []bool
			post(tui, func() {
				tui.Confirm("itch", "Close the running client?", func(ok bool) { answers = append(answers, ok) })
			})
			assert.Contains(t, tui.model.View(), "Close the running client?")
			assert.Contains(t, tui.model.View(), "y/n")

			tui.model.Update(key(tc.key))
			tui.model.Update(key(tc.key))
			assert.Equal(t, []bool{tc.answer}, answers)
			assert.NotContains(t, tui.model.View(), "Close the running client?")
		})
	}
}

func TestTUI_DialogSwallowsCancelKey(t *testing.T) {
	tui := newTestTUI()
	clicks := 0
	tui.OnCancel(func() { clicks++ })

	acked := 0
	post(tui, func() {
		tui.Render(progress.State{CancelVisible: true, CancelEnabled: true})
		tui.Inform("itch", "itch is ready", func() { acked++ })
	})

	tui.model.Update(key("c"))
	assert.Equal(t, 0, acked)
	tui.model.Update(key("enter"))
	assert.Equal(t, 1, acked)
	assert.Equal(t, 0, clicks)
}

func TestTUI_HideAndClose(t *testing.T) {
	tui := newTestTUI()
	post(tui, func() { tui.Render(progress.State{Message: "Launching..."}) })

	post(tui, tui.Hide)
	assert.Empty(t, tui.model.View())

	post(tui, func() { tui.Inform("itch", "itch is ready", func() {}) })
	assert.Contains(t, tui.model.View(), "itch is ready")
	assert.NotContains(t, tui.model.View(), "Launching...")
	tui.model.Update(key("enter"))

	cmd := post(tui, tui.Close)
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)

	// closed mailboxes drop what comes next
	tui.Post(func() { t.Fatal("ran after close") })
	_, more := tui.mb.Next()
	assert.False(t, more)
}

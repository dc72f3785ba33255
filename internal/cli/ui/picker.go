package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gitayam/markdown2dokuwiki/pkg/converter"
)

const (
	pickerWidth  = 48
	pickerHeight = 8
)

// dialectItem is one entry of the dialect picker.
type dialectItem struct {
	dialect converter.Dialect
	title   string
	desc    string
}

func (i dialectItem) FilterValue() string { return i.title }
func (i dialectItem) Title() string       { return i.title }
func (i dialectItem) Description() string { return i.desc }

var dialectItems = []list.Item{
	dialectItem{dialect: converter.DialectDokuWiki, title: "1. DokuWiki", desc: "headings become ======"},
	dialectItem{dialect: converter.DialectMediaWiki, title: "2. MediaWiki", desc: "headings become ="},
}

// PickerModel is a Bubble Tea model that lets the operator choose the target
// dialect with the arrow keys or by number.
type PickerModel struct {
	list     list.Model
	chosen   converter.Dialect
	quitting bool
}

// NewPickerModel creates the dialect picker with DokuWiki preselected.
func NewPickerModel() *PickerModel {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorSelectedFg).
		Background(ColorSelectedBg).
		Bold(true).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorSelectedDescFg).
		Background(ColorSelectedBg).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.
		Foreground(ColorNormalFg).Padding(0, 0, 0, 1)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.
		Foreground(ColorNormalDescFg).Padding(0, 0, 0, 1)

	l := list.New(dialectItems, delegate, pickerWidth, pickerHeight)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetShowFilter(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return &PickerModel{list: l}
}

// Init implements tea.Model.
func (m *PickerModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(min(msg.Width, pickerWidth))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "1":
			m.chosen = converter.DialectDokuWiki
			return m, tea.Quit
		case "2":
			m.chosen = converter.DialectMediaWiki
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(dialectItem); ok {
				m.chosen = item.dialect
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *PickerModel) View() string {
	if m.chosen != "" || m.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render("Choose the conversion type"),
		m.list.View(),
		FooterStyle.Render("↑/↓ move • enter select • 1/2 quick pick • q cancel"),
	)
}

// Chosen returns the selected dialect, or false if the picker was cancelled.
func (m *PickerModel) Chosen() (converter.Dialect, bool) {
	return m.chosen, m.chosen != ""
}

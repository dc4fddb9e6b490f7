package term

import (
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/ortho/pkg/interact"
	"golang.org/x/image/colornames"
)

var (
	menuStyle    = uv.Style{Fg: colornames.Black, Bg: colornames.Lightgray}
	menuHotStyle = uv.Style{Fg: colornames.White, Bg: colornames.Steelblue}
)

// MenuItem is one context menu entry.
type MenuItem struct {
	Label  string
	Action interact.Action
}

// DefaultMenu lists the viewport actions offered on right click.
func DefaultMenu() []MenuItem {
	return []MenuItem{
		{"Fit to scene", interact.ActionFit},
		{"Reset view", interact.ActionReset},
		{"Save location", interact.ActionSaveLocation},
		{"Load location", interact.ActionLoadLocation},
		{"Toggle lock", interact.ActionLock},
	}
}

// Menu is a popup list of actions anchored at a cell.
type Menu struct {
	Items []MenuItem

	open bool
	x, y int
	hot  int
}

// NewMenu creates a closed menu.
func NewMenu(items []MenuItem) *Menu {
	return &Menu{Items: items, hot: -1}
}

// Open shows the menu with its top-left corner at (x, y).
func (m *Menu) Open(x, y int) {
	m.open = true
	m.x, m.y = x, y
	m.hot = -1
}

// Close hides the menu.
func (m *Menu) Close() { m.open = false }

// IsOpen reports whether the menu is shown.
func (m *Menu) IsOpen() bool { return m.open }

func (m *Menu) width() int {
	w := 0
	for _, it := range m.Items {
		w = max(w, len(it.Label))
	}
	return w + 2
}

// itemAt returns the item index under cell (x, y), or -1.
func (m *Menu) itemAt(x, y int) int {
	if !m.open || x < m.x || x >= m.x+m.width() {
		return -1
	}
	i := y - m.y
	if i < 0 || i >= len(m.Items) {
		return -1
	}
	return i
}

// Hover highlights the item under (x, y).
func (m *Menu) Hover(x, y int) {
	m.hot = m.itemAt(x, y)
}

// Click closes the menu and returns the action under (x, y). A click
// outside the items returns ActionNone.
func (m *Menu) Click(x, y int) interact.Action {
	i := m.itemAt(x, y)
	m.Close()
	if i < 0 {
		return interact.ActionNone
	}
	return m.Items[i].Action
}

// Draw paints the open menu, shifted left or up to stay inside area.
func (m *Menu) Draw(scr Canvas, area uv.Rectangle) {
	if !m.open {
		return
	}
	w := m.width()
	m.x = max(min(m.x, area.Max.X-w), area.Min.X)
	m.y = max(min(m.y, area.Max.Y-len(m.Items)), area.Min.Y)

	for i, it := range m.Items {
		style := menuStyle
		if i == m.hot {
			style = menuHotStyle
		}
		label := " " + it.Label
		for len(label) < w {
			label += " "
		}
		Text(scr, m.x, m.y+i, area.Max.X, label, style)
	}
}

package tui

import (
	"fmt"
	"strings"

	"github.com/shiftforge/reflow/internal/model"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(docStyle.Render(m.list.View()))

	if item, ok := m.list.SelectedItem().(workCenterItem); ok {
		b.WriteString("\n")
		b.WriteString(renderWorkOrders(item, m.violationsOf))
	}

	return b.String()
}

func renderWorkOrders(item workCenterItem, violationsOf map[string][]model.Violation) string {
	var b strings.Builder
	b.WriteString(activeTabStyle.Render(item.wc.Name))
	b.WriteString("\n")

	for _, o := range item.orders {
		line := fmt.Sprintf("  %-12s %s -> %s", o.Number, o.Start.Format("2006-01-02 15:04"), o.End.Format("15:04"))
		vs := violationsOf[o.ID]
		switch {
		case len(vs) == 0:
			b.WriteString(okStyle.Render(line))
		case anyFatal(vs):
			b.WriteString(dangerStyle.Render(line + " — " + vs[0].Message))
		default:
			b.WriteString(warningStyle.Render(line + " — " + vs[0].Message))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func anyFatal(vs []model.Violation) bool {
	for _, v := range vs {
		if v.IsFatal {
			return true
		}
	}
	return false
}

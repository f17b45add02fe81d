// Package tui implements a read-only dashboard over a scenario: one
// pane lists work centers with a violation count, the other shows the
// selected work center's work orders in the order the scenario lists them.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shiftforge/reflow/internal/model"
	"github.com/shiftforge/reflow/internal/scenario"
)

type workCenterItem struct {
	wc             model.WorkCenter
	orders         []model.WorkOrder
	violationCount int
}

func (i workCenterItem) Title() string { return i.wc.Name }
func (i workCenterItem) Description() string {
	return fmt.Sprintf("%d work order(s), %d violation(s)", len(i.orders), i.violationCount)
}
func (i workCenterItem) FilterValue() string { return i.wc.Name }

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the dashboard's bubbletea model.
type Model struct {
	list          list.Model
	scenarioName  string
	violationsOf  map[string][]model.Violation
	width, height int
}

// New builds a dashboard model from a scenario and the violations found
// against it (nil or empty if the scenario is currently clean).
func New(sc scenario.Scenario, violations []model.Violation) Model {
	ordersByCenter := make(map[string][]model.WorkOrder)
	for _, o := range sc.WorkOrders {
		ordersByCenter[o.WorkCenterID] = append(ordersByCenter[o.WorkCenterID], o)
	}
	violationsOf := make(map[string][]model.Violation)
	for _, v := range violations {
		violationsOf[v.OrderID] = append(violationsOf[v.OrderID], v)
	}

	items := make([]list.Item, 0, len(sc.WorkCenters))
	for _, wc := range sc.WorkCenters {
		count := 0
		for _, o := range ordersByCenter[wc.ID] {
			count += len(violationsOf[o.ID])
		}
		items = append(items, workCenterItem{wc: wc, orders: ordersByCenter[wc.ID], violationCount: count})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("Work centers — %s", sc.Name)

	return Model{
		list:         l,
		scenarioName: sc.Name,
		violationsOf: violationsOf,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Package constraints implements the multi-pass constraint checker: it
// classifies an arbitrary schedule into zero or more typed violations and
// flags the fatal states the reflow engine refuses to repair.
package constraints

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shiftforge/reflow/internal/calendar"
	"github.com/shiftforge/reflow/internal/model"
)

// Verify classifies orders against centers into typed violations. originals,
// if non-nil, is the pre-reflow snapshot used to detect moved fixed orders.
// Verify is pure and total: it never errors, and ordering of output follows
// input iteration order within each pass.
func Verify(orders []model.WorkOrder, centers []model.WorkCenter, originals []model.WorkOrder) []model.Violation {
	var violations []model.Violation

	centerByID := make(map[string]model.WorkCenter, len(centers))
	for _, c := range centers {
		centerByID[c.ID] = c
	}

	byCenter := make(map[string][]model.WorkOrder)
	for _, o := range orders {
		byCenter[o.WorkCenterID] = append(byCenter[o.WorkCenterID], o)
	}

	// Pass 1: maintenance-window collision.
	for _, o := range orders {
		if o.IsMaintenance {
			continue
		}
		wc, ok := centerByID[o.WorkCenterID]
		if !ok || len(wc.MaintenanceWindows) == 0 {
			continue
		}
		for _, win := range wc.MaintenanceWindows {
			if calendar.Overlaps(o.Start, o.End, win.Start, win.End) {
				violations = append(violations, model.Violation{
					OrderID: o.ID,
					Type:    model.MaintenanceCollision,
					Message: fmt.Sprintf("work order overlaps maintenance window %s - %s", win.Start, win.End),
				})
				break
			}
		}
	}

	// Pass 2: fixed-order displacement.
	if originals != nil {
		originalByID := make(map[string]model.WorkOrder, len(originals))
		for _, o := range originals {
			originalByID[o.ID] = o
		}
		for _, o := range orders {
			if !o.IsMaintenance {
				continue
			}
			orig, ok := originalByID[o.ID]
			if !ok {
				continue
			}
			if !o.Start.Equal(orig.Start) {
				violations = append(violations, model.Violation{
					OrderID: o.ID,
					Type:    model.FixedOrderMoved,
					Message: fmt.Sprintf("fixed work order moved from %s to %s", orig.Start, o.Start),
				})
			}
		}
	}

	// Pass 3: overlap, per work center, adjacent pairs sorted by start.
	for _, wc := range centers {
		sorted := sortedByStart(byCenter[wc.ID])
		for i := 1; i < len(sorted); i++ {
			prev, curr := sorted[i-1], sorted[i]
			if curr.Start.Before(prev.End) {
				violations = append(violations, model.Violation{
					OrderID: curr.ID,
					Type:    model.Overlap,
					Message: fmt.Sprintf("overlaps preceding work order %s on work center %s", prev.ID, wc.ID),
				})
			}
		}
	}

	// Pass 4: shift adherence.
	for _, o := range orders {
		if o.IsMaintenance {
			continue
		}
		wc, ok := centerByID[o.WorkCenterID]
		if !ok {
			continue
		}
		if diff := calendar.WorkingMinutes(o.Start, o.End, wc) - o.DurationMinutes; diff > 1 || diff < -1 {
			violations = append(violations, model.Violation{
				OrderID: o.ID,
				Type:    model.OutsideShift,
				Message: "Total work time mismatch",
			})
		}
		if !calendar.IsTimeInShift(o.Start, wc.Shifts, calendar.AsStart) {
			violations = append(violations, model.Violation{
				OrderID: o.ID,
				Type:    model.OutsideShift,
				Message: "Invalid Start",
			})
		}
		if !calendar.IsTimeInShift(o.End, wc.Shifts, calendar.AsEnd) {
			violations = append(violations, model.Violation{
				OrderID: o.ID,
				Type:    model.OutsideShift,
				Message: "Invalid End",
			})
		}
	}

	// Pass 5: dependency — child must start at or after parent end.
	orderByID := make(map[string]model.WorkOrder, len(orders))
	for _, o := range orders {
		orderByID[o.ID] = o
	}
	for _, child := range orders {
		for _, parentID := range child.DependsOn {
			parent, ok := orderByID[parentID]
			if !ok {
				continue // unresolvable parent id: no constraint.
			}
			if child.Start.Before(parent.End) {
				violations = append(violations, model.Violation{
					OrderID: child.ID,
					Type:    model.DependencyError,
					Message: fmt.Sprintf("starts before its dependency %s ends", parentID),
				})
			}
		}
	}

	// Pass 6: fatal fixed-vs-fixed overlap, per work center.
	for _, wc := range centers {
		var fixed []model.WorkOrder
		for _, o := range byCenter[wc.ID] {
			if o.IsMaintenance {
				fixed = append(fixed, o)
			}
		}
		fixed = sortedByStart(fixed)
		for i := 1; i < len(fixed); i++ {
			prev, curr := fixed[i-1], fixed[i]
			if curr.Start.Before(prev.End) {
				violations = append(violations, model.Violation{
					OrderID: curr.ID,
					Type:    model.MaintenanceCollision,
					Message: fmt.Sprintf("fixed work order overlaps fixed work order %s on work center %s", prev.ID, wc.ID),
					IsFatal: true,
				})
			}
		}
	}

	// Pass 7: fatal circular dependencies, DFS with recursion stack.
	visited := make(map[string]bool, len(orders))
	onStack := make(map[string]bool, len(orders))
	var path []string
	var cycleViolations []model.Violation

	var dfs func(id string)
	dfs = func(id string) {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		if o, ok := orderByID[id]; ok {
			for _, parentID := range o.DependsOn {
				if _, known := orderByID[parentID]; !known {
					continue // unresolvable parent id: not traversed.
				}
				if onStack[parentID] {
					cycleStart := indexOf(path, parentID)
					cyclePath := append(append([]string(nil), path[cycleStart:]...), parentID)
					cycleViolations = append(cycleViolations, model.Violation{
						OrderID: id,
						Type:    model.DependencyError,
						Message: fmt.Sprintf("circular dependency: %s", strings.Join(cyclePath, " -> ")),
						IsFatal: true,
					})
					continue
				}
				if !visited[parentID] {
					dfs(parentID)
				}
			}
		}

		onStack[id] = false
		path = path[:len(path)-1]
	}

	for _, o := range orders {
		if !visited[o.ID] {
			dfs(o.ID)
		}
	}
	violations = append(violations, cycleViolations...)

	return violations
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return 0
}

func sortedByStart(orders []model.WorkOrder) []model.WorkOrder {
	out := append([]model.WorkOrder(nil), orders...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// Package sequence implements the Sequence Preserver: for a single work
// center it linearizes the non-maintenance work orders into a total
// processing order that respects dependency chains while preserving
// original chronology as closely as possible.
package sequence

import (
	"sort"

	"github.com/shiftforge/reflow/internal/model"
)

// Prepare returns the processing order for orders, which must all belong
// to the same work center and must not include maintenance work orders
// (the reflow engine routes around those separately as obstacles).
func Prepare(orders []model.WorkOrder) []model.WorkOrder {
	byID := make(map[string]model.WorkOrder, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}

	groupOf, groups := connectedComponents(orders, byID)

	topoByGroup := make(map[int][]string, len(groups))
	for gid, ids := range groups {
		topoByGroup[gid] = topoSort(ids, byID)
	}

	chronological := stableSortByStart(orders)

	visited := make(map[string]bool, len(orders))
	result := make([]model.WorkOrder, 0, len(orders))
	for _, o := range chronological {
		if visited[o.ID] {
			continue
		}
		gid, grouped := groupOf[o.ID]
		if grouped && len(groups[gid]) > 1 {
			for _, id := range topoByGroup[gid] {
				if visited[id] {
					continue
				}
				visited[id] = true
				result = append(result, byID[id])
			}
			continue
		}
		visited[o.ID] = true
		result = append(result, o)
	}

	return result
}

// connectedComponents clusters orders by treating DependsOn as undirected,
// restricted to ids present in this work center's order set. Singletons
// are reported as components of size 1 (callers treat those as
// independent, not as dependency groups).
func connectedComponents(orders []model.WorkOrder, byID map[string]model.WorkOrder) (map[string]int, map[int][]string) {
	parent := make(map[string]string, len(orders))
	var find func(id string) string
	find = func(id string) string {
		if parent[id] != id {
			parent[id] = find(parent[id])
		}
		return parent[id]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for _, o := range orders {
		parent[o.ID] = o.ID
	}
	for _, o := range orders {
		for _, dep := range o.DependsOn {
			if _, ok := byID[dep]; ok {
				union(o.ID, dep)
			}
		}
	}

	rootToGID := make(map[string]int)
	groupOf := make(map[string]int, len(orders))
	groups := make(map[int][]string)
	nextGID := 0
	for _, o := range orders {
		root := find(o.ID)
		gid, ok := rootToGID[root]
		if !ok {
			gid = nextGID
			nextGID++
			rootToGID[root] = gid
		}
		groupOf[o.ID] = gid
		groups[gid] = append(groups[gid], o.ID)
	}

	return groupOf, groups
}

// topoSort performs a Kahn-style topological sort of ids, restricted to
// dependency edges whose parent also belongs to ids. If a cycle prevents
// full ordering (already reported as fatal by the constraint checker),
// remaining ids are appended in their given order as a defensive fallback.
func topoSort(ids []string, byID map[string]model.WorkOrder) []string {
	inGroup := make(map[string]bool, len(ids))
	for _, id := range ids {
		inGroup[id] = true
	}

	remaining := make(map[string]bool, len(ids))
	for _, id := range ids {
		remaining[id] = true
	}

	order := make([]string, 0, len(ids))
	for len(remaining) > 0 {
		progressed := false
		for _, id := range ids {
			if !remaining[id] {
				continue
			}
			ready := true
			for _, dep := range byID[id].DependsOn {
				if inGroup[dep] && remaining[dep] {
					ready = false
					break
				}
			}
			if ready {
				order = append(order, id)
				delete(remaining, id)
				progressed = true
			}
		}
		if !progressed {
			// Defensive: a cycle within this group should already be a
			// fatal violation upstream. Break out rather than loop
			// forever, appending what's left in original order.
			for _, id := range ids {
				if remaining[id] {
					order = append(order, id)
				}
			}
			break
		}
	}
	return order
}

func stableSortByStart(orders []model.WorkOrder) []model.WorkOrder {
	out := append([]model.WorkOrder(nil), orders...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

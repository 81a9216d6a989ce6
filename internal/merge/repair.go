package merge

import "sort"

// ResolveGroupNameCollisions deduplicates merged groups that ended up with
// the same name under different ids, which happens when two devices create
// a group independently. The newer record wins (ties break on the smaller
// id, so every device picks the same winner); losers are removed from the
// group map and their tabs are re-pointed at the winner. Returns the
// dropped group ids and the keys of the re-pointed tabs.
//
// Must run before RepairOrphans so surviving references are judged against
// the deduplicated group map.
func ResolveGroupNameCollisions(groups map[string]GroupRecord, tabs map[string]TabRecord) (dropped, repointed []string) {
	winners := make(map[string]GroupRecord, len(groups))
	for _, group := range groups {
		best, ok := winners[group.Name]
		if !ok || group.UpdatedAt > best.UpdatedAt ||
			(group.UpdatedAt == best.UpdatedAt && group.ID < best.ID) {
			winners[group.Name] = group
		}
	}

	for id, group := range groups {
		winner := winners[group.Name]
		if winner.ID == id {
			continue
		}
		delete(groups, id)
		dropped = append(dropped, id)
		for key, tab := range tabs {
			if tab.GroupID != id {
				continue
			}
			tab.GroupID = winner.ID
			tabs[key] = tab
			repointed = append(repointed, key)
		}
	}

	sort.Strings(dropped)
	sort.Strings(repointed)
	return dropped, repointed
}

// RepairOrphans clears every tab GroupID that does not reference a key of
// the merged group map, returning the keys of the repaired tabs. A cleared
// tab is unassigned (inbox); promoting it to a default group is the
// caller's policy decision, not the engine's.
//
// Must run after both collections are merged and before the merged state is
// persisted or uploaded, so a dangling reference is never written anywhere.
func RepairOrphans(tabs map[string]TabRecord, groups map[string]GroupRecord) []string {
	var repaired []string
	for key, tab := range tabs {
		if tab.GroupID == "" {
			continue
		}
		if _, ok := groups[tab.GroupID]; ok {
			continue
		}
		tab.GroupID = ""
		tabs[key] = tab
		repaired = append(repaired, key)
	}
	return repaired
}

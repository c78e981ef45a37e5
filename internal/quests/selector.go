package quests

// SelectNext returns the first quest of zone, in catalog order, that is
// not completed and whose requirements hold. It returns false when no
// quest qualifies, which means the zone is complete for this realm.
func (c *Catalog) SelectNext(zone string, traits map[string]bool, completed []string) (Quest, bool) {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}
	for _, q := range c.QuestsFor(zone) {
		if done[q.ID] {
			continue
		}
		if q.Available(traits) {
			return q, true
		}
	}
	return Quest{}, false
}

// Remaining counts the quests of zone that are not completed, ignoring
// requirements.
func (c *Catalog) Remaining(zone string, completed []string) int {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}
	n := 0
	for _, q := range c.QuestsFor(zone) {
		if !done[q.ID] {
			n++
		}
	}
	return n
}

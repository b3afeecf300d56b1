package domain

import "sort"

// Snapshot is the whole persisted data slot: every tenant ledger keyed by tenant id.
// It serializes as a bare JSON object.
type Snapshot map[string]TenantLedger

// Clone deep-copies every ledger.
func (s Snapshot) Clone() Snapshot {
	c := make(Snapshot, len(s))
	for id, t := range s {
		c[id] = t.Clone()
	}
	return c
}

// TenantIDs returns the tenant ids in ascending order.
func (s Snapshot) TenantIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

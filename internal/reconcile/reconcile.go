// Package reconcile plans the collapse of duplicate clusters already sitting
// in the remote store: for every fingerprint with more than one remote event,
// exactly one keeper is retained and the rest are scheduled for deletion.
//
// Keeper selection is deliberately simple and auditable: the lowest remote id
// wins. Remote ids increase monotonically, so the keeper is the oldest record
// and later duplicates are typically re-scrapes of the same source.
package reconcile

import (
	"github.com/orlandopunx/eventsync/internal/index"
)

// Cluster is one fingerprint group with its keeper decided.
type Cluster struct {
	Fingerprint string
	Keeper      index.Indexed
	Extras      []index.Indexed // scheduled for deletion, ascending by id
}

// Plan is the full deletion schedule for one reconciliation pass.
type Plan struct {
	Clusters    []Cluster
	TotalEvents int // events examined
	ToDelete    int // events scheduled for deletion
}

// BuildPlan walks the remote index and plans one keeper per duplicate
// cluster. Clusters appear in fingerprint order and extras in ascending
// remote-id order, so the plan is deterministic for a given index.
func BuildPlan(ix *index.Index) *Plan {
	plan := &Plan{TotalEvents: ix.Total()}

	for _, fp := range ix.Fingerprints() {
		group := ix.Lookup(fp)
		if len(group) < 2 {
			continue
		}

		// Groups come out of the index sorted ascending by remote id.
		cluster := Cluster{
			Fingerprint: fp,
			Keeper:      group[0],
			Extras:      group[1:],
		}
		plan.Clusters = append(plan.Clusters, cluster)
		plan.ToDelete += len(cluster.Extras)
	}

	return plan
}

// DeleteTargets flattens the plan into the ordered list of remote events to
// delete, keepers always excluded.
func (p *Plan) DeleteTargets() []index.Indexed {
	targets := make([]index.Indexed, 0, p.ToDelete)
	for _, c := range p.Clusters {
		targets = append(targets, c.Extras...)
	}
	return targets
}

// Empty reports whether the plan schedules nothing.
func (p *Plan) Empty() bool {
	return len(p.Clusters) == 0
}

package sync

import (
	"github.com/agentstation/wikisync/internal/cmd/output"
	"github.com/agentstation/wikisync/pkg/catalogs"
	"github.com/agentstation/wikisync/pkg/wikis"
)

// groups are the partitioned outcome of classification, in the order the
// reconciler consumes them.
type groups struct {
	add    []*wikis.Wiki
	update []*wikis.Wiki
	remove []*wikis.Wiki
}

// hydrateBulk applies the bulk details response to every candidate.
// Candidates absent from the response no longer resolve and are
// invalidated; candidates answered with an empty domain are closed inside
// UpdateFromAPI. A schema break aborts immediately.
func hydrateBulk(registry *wikis.Registry, ids []int, entries map[string]map[string]any) error {
	for _, id := range ids {
		w := registry.Wiki(id)
		entry, ok := entries[catalogs.Key(id)]
		if !ok {
			w.Invalidate()
			continue
		}
		if err := w.UpdateFromAPI(entry); err != nil {
			return err
		}
	}
	return nil
}

// classify partitions hydrated candidates into the reconciler's groups and
// stamps each entity's disposition. Precedence per entity: lifecycle
// variant first, then the language allow-list, then catalog membership.
// Off-catalog entities that fail any gate are simply dropped; on-catalog
// entities that fail are scheduled for removal. limit, when positive, caps
// how many new entities are admitted per run.
func classify(registry *wikis.Registry, ids []int, settings *catalogs.Settings, limit int) groups {
	var g groups
	admitted := 0

	for _, id := range ids {
		w := registry.Wiki(id)

		// Both terminal variants end the candidacy; the report label
		// depends on where the wiki stood. A catalog member that stopped
		// resolving was closed, a never-cataloged candidate that does not
		// resolve was invalid all along.
		if v := w.Variant(); v == wikis.Closed || v == wikis.Invalid {
			if w.OnCatalog {
				w.Disposition = wikis.DispositionClosed
				g.remove = append(g.remove, w)
			} else {
				w.Disposition = wikis.DispositionInvalid
			}
			continue
		}

		if !settings.AllowsLanguage(w.Language) {
			w.Disposition = wikis.DispositionExcluded
			if w.OnCatalog {
				g.remove = append(g.remove, w)
			}
			continue
		}

		if w.OnCatalog {
			w.Disposition = wikis.DispositionUpdate
			g.update = append(g.update, w)
			continue
		}

		if limit > 0 && admitted >= limit {
			w.Disposition = wikis.DispositionNone
			continue
		}
		admitted++
		w.Disposition = wikis.DispositionNew
		g.add = append(g.add, w)
	}
	return g
}

// reportRows builds the run report from the stamped dispositions.
func reportRows(registry *wikis.Registry, ids []int, report *output.Report) {
	for _, id := range ids {
		w := registry.Wiki(id)
		if w.Disposition == wikis.DispositionNone {
			continue
		}
		report.Add(output.Row{
			ID:          w.ID,
			Language:    w.Language,
			Name:        w.Name,
			Domain:      w.Domain,
			Disposition: w.Disposition.String(),
		})
	}
}

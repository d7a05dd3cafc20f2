package sync

import (
	"context"
	"io"
	"sort"

	"github.com/agentstation/wikisync/internal/cmd/output"
	"github.com/agentstation/wikisync/internal/fandom"
	"github.com/agentstation/wikisync/pkg/catalogs"
	"github.com/agentstation/wikisync/pkg/errors"
	"github.com/agentstation/wikisync/pkg/wikis"
)

// pass is one per-domain enrichment stage: detail hydration through site
// variables, or admin-activity counting. A pass applies to one entity at a
// time and knows how to revert itself when the operator discards partial
// results.
type pass struct {
	name   string
	apply  func(ctx context.Context, w *wikis.Wiki) error
	revert func(w *wikis.Wiki)
}

// detailsPass hydrates the lazily-loaded attribute group from each wiki's
// site variables.
func detailsPass(client *fandom.Client) pass {
	return pass{
		name: "details",
		apply: func(ctx context.Context, w *wikis.Wiki) error {
			vars, err := client.Variables(ctx, w.Domain)
			if err != nil {
				return err
			}
			w.ApplyVariables(vars)
			return nil
		},
		revert: func(w *wikis.Wiki) {
			w.HasDetails = false
			w.MainPage = ""
			w.Categories = nil
			w.COPPA = nil
			w.Theme = nil
		},
	}
}

// adminsPass counts active administrative accounts into the stats snapshot.
func adminsPass(client *fandom.Client, settings *catalogs.Settings) pass {
	return pass{
		name: "admins",
		apply: func(ctx context.Context, w *wikis.Wiki) error {
			counts, err := client.ActiveAdmins(ctx, w.Domain, settings.ActiveDays, settings.MinAdminEdits)
			if err != nil {
				return err
			}
			w.SetAdminCounts(counts.Bureaucrats, counts.Admins, counts.Moderators)
			return nil
		},
		revert: func(w *wikis.Wiki) {
			w.HasAdminCounts = false
			delete(w.Stats, "bureaucrats")
			delete(w.Stats, "admins")
			delete(w.Stats, "moderators")
		},
	}
}

// worklist is the enrichment order: every entity headed for the catalog,
// ascending by identifier.
func worklist(g groups) []*wikis.Wiki {
	list := make([]*wikis.Wiki, 0, len(g.add)+len(g.update))
	list = append(list, g.add...)
	list = append(list, g.update...)
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// runPass walks one enrichment pass over the worklist. Interrupts and
// per-entity failures stop the pass, never the run: the operator decides
// whether the entities already processed keep their results, and the run
// moves on to the next stage. A second interrupt aborts the run.
func (s *Syncer) runPass(ctx context.Context, p pass, list []*wikis.Wiki, progress io.Writer) error {
	total := len(list)
	done := 0

	stop := func(keep bool) {
		if keep {
			return
		}
		for _, w := range list[:done] {
			p.revert(w)
		}
	}

	for _, w := range list {
		if s.interrupt.Aborted() {
			return errors.ErrAborted
		}
		if s.interrupt.Fired() {
			output.Done(progress)
			keep, err := s.decider.KeepPartial(p.name, done, total)
			if err != nil {
				return err
			}
			stop(keep)
			s.interrupt.Reset()
			s.logger.Warn().Str("pass", p.name).Int("done", done).Int("total", total).Bool("kept", keep).Msg("pass interrupted")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := p.apply(ctx, w); err != nil {
			output.Done(progress)
			s.logger.Warn().Err(err).Int("wiki", w.ID).Str("domain", w.Domain).Str("pass", p.name).Msg("enrichment failed; stopping pass")
			keep, derr := s.decider.KeepPartial(p.name, done, total)
			if derr != nil {
				return derr
			}
			stop(keep)
			return nil
		}
		done++
		output.Progress(progress, p.name, done, total)
	}
	output.Done(progress)
	return nil
}

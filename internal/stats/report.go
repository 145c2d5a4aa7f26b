// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/tuistream/internal/model"
	"github.com/verte-zerg/tuistream/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	Window   int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig, window int) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return Report{Sessions: sessions, Window: window}, nil
}

// Render prints the summary, curves and session table.
func (r Report) Render(w io.Writer) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if err := RenderCurves(w, r.Sessions, r.Window); err != nil {
		return err
	}
	return RenderSessionTable(w, r.Sessions)
}

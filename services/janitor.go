package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/leocezardev/pifc/models"
	"github.com/leocezardev/pifc/repository"
)

// janitorGrace is added on top of the reasoning timeout before an entity
// stuck in analyzing is considered abandoned (e.g. the process restarted
// mid-call and the status update never happened).
const janitorGrace = 2 * time.Minute

// Janitor periodically fails contracts and sessions left in analyzing
// status longer than any reasoning call could run.
type Janitor struct {
	store    repository.Store
	staleAge time.Duration
	interval time.Duration
}

func NewJanitor(store repository.Store, reasoningTimeout time.Duration) *Janitor {
	return &Janitor{
		store:    store,
		staleAge: reasoningTimeout + janitorGrace,
		interval: 30 * time.Second,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-j.staleAge)

	contracts, err := j.store.GetContracts(ctx)
	if err != nil {
		slog.Error("Janitor failed to list contracts", "error", err)
	} else {
		for _, contract := range contracts {
			if contract.Status != models.ContractStatusAnalyzing || contract.UpdatedAt.After(cutoff) {
				continue
			}
			if err := j.store.UpdateContractStatus(ctx, contract.ID, models.ContractStatusFailed); err != nil {
				slog.Error("Janitor failed to fail contract", "error", err, "contract_id", contract.ID)
				continue
			}
			slog.Warn("Stale contract analysis marked failed", "contract_id", contract.ID)
		}
	}

	sessions, err := j.store.GetSessions(ctx)
	if err != nil {
		slog.Error("Janitor failed to list sessions", "error", err)
		return
	}
	for _, session := range sessions {
		if session.Status != models.SessionStatusAnalyzing || session.UpdatedAt.After(cutoff) {
			continue
		}
		if err := j.store.UpdateSessionStatus(ctx, session.ID, models.SessionStatusFailed); err != nil {
			slog.Error("Janitor failed to fail session", "error", err, "session_id", session.ID)
			continue
		}
		slog.Warn("Stale session scoring marked failed", "session_id", session.ID)
	}
}

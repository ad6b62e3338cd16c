package onboarding

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aurasense/aurasense-server/internal/model"
	"github.com/aurasense/aurasense-server/internal/store"
)

// ReconcileResult is the canonical view of one reconciliation pass.
type ReconcileResult struct {
	// Merged is durable fields overlaid with local then freshly extracted
	// fields. It is used only for response personalization, never for
	// completion decisions.
	Merged map[string]any
	// Missing is the authoritative missing-field list, computed against the
	// durable record (or the merged view in degraded mode).
	Missing []string
	// Complete is true when Missing is empty.
	Complete bool
	// Degraded marks a pass where the durable read failed and missingness was
	// computed from local+extracted fields only.
	Degraded bool
	// User is the durable record as read during this pass; nil in degraded
	// mode or when the record does not exist yet.
	User *model.User
}

// Reconciler merges conversational state with the durable user record. The
// durable record, not the conversation, is the authority for "is this field
// missing".
type Reconciler struct {
	users store.Users
	log   zerolog.Logger
}

func NewReconciler(users store.Users, log zerolog.Logger) *Reconciler {
	return &Reconciler{users: users, log: log}
}

// Reconcile persists freshly extracted fields, re-reads the durable record,
// and computes the missing-field list and merged view.
//
// Persistence is best-effort: a failed write is logged and the pass continues
// on in-memory values. A failed durable read switches the pass to degraded
// mode. Within one turn, a freshly extracted value wins over a local one.
func (r *Reconciler) Reconcile(ctx context.Context, email string, local, extracted map[string]any) ReconcileResult {
	// Step 1: write every present extracted field durably before the turn's
	// response is finalized.
	persistable := map[string]any{}
	for field, v := range extracted {
		if !IsCatalogField(field) && field != "phone" && field != "username" {
			continue
		}
		if IsPresent(field, v) {
			persistable[field] = v
		}
	}
	if len(persistable) > 0 {
		if err := r.users.UpdateProfile(ctx, email, persistable); err != nil {
			r.log.Warn().Err(err).Str("email", email).
				Msg("persisting extracted fields failed; continuing with in-memory values")
		}
	}

	// Step 2: read back the durable record.
	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		r.log.Warn().Err(err).Str("email", email).
			Msg("durable read failed; reconciling in degraded mode")
		merged := overlay(nil, local, extracted)
		missing := MissingFields(merged)
		return ReconcileResult{
			Merged:   merged,
			Missing:  missing,
			Complete: len(missing) == 0,
			Degraded: true,
		}
	}

	// Steps 3-5: authoritative missing list from the durable record; merged
	// view overlays local and extracted values on top of it.
	durable := user.ProfileFields()
	if user.FirstName != "" {
		durable["first_name"] = user.FirstName
	}
	missing := MissingFields(durable)
	return ReconcileResult{
		Merged:   overlay(durable, local, extracted),
		Missing:  missing,
		Complete: len(missing) == 0,
		User:     user,
	}
}

// CompleteOnboarding marks the durable record onboarded. This is the one
// write whose failure is allowed to fail a turn.
func (r *Reconciler) CompleteOnboarding(ctx context.Context, email string) error {
	return r.users.SetOnboarded(ctx, email)
}

// overlay layers field maps left to right; later layers win. Only present
// values overwrite.
func overlay(layers ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, layer := range layers {
		for k, v := range layer {
			if IsPresent(k, v) {
				out[k] = v
			}
		}
	}
	return out
}

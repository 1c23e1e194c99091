package application

import (
	"context"

	"github.com/atvirokodosprendimai/pressroom/internal/domain"
	"github.com/rs/zerolog"
)

// AfterCreateFunc receives the entity a successful insert produced. It runs
// after the enclosing write has committed, so a failure cannot roll the
// write back; it is logged and dropped.
type AfterCreateFunc func(ctx context.Context, entity any) error

type Hooks struct {
	log         zerolog.Logger
	afterCreate map[domain.EntityKind][]AfterCreateFunc
}

func NewHooks(log zerolog.Logger) *Hooks {
	return &Hooks{
		log:         log,
		afterCreate: make(map[domain.EntityKind][]AfterCreateFunc),
	}
}

func (h *Hooks) OnAfterCreate(kind domain.EntityKind, fn AfterCreateFunc) {
	h.afterCreate[kind] = append(h.afterCreate[kind], fn)
}

func (h *Hooks) FireAfterCreate(ctx context.Context, kind domain.EntityKind, id uint, entity any) {
	for _, fn := range h.afterCreate[kind] {
		if err := fn(ctx, entity); err != nil {
			hookErr := &domain.HookError{Kind: kind, ID: id, Err: err}
			h.log.Error().Err(hookErr).Str("entity", string(kind)).Uint("id", id).Msg("afterCreate hook failed")
		}
	}
}

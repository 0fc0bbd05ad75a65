// Package gate подтверждение паролем перед редактированием или удалением
// материала. Намерение (Request) отделено от разрешения (Confirm): пока
// проверка не прошла, хранилище не трогается.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Spok95/material-desk/internal/domain/materials"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Kind string

const (
	KindEdit   Kind = "edit"
	KindDelete Kind = "delete"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseExecuting Phase = "executing"
)

var (
	ErrNoPending = errors.New("no pending action")
	ErrBusy      = errors.New("action is already executing")
)

// VerificationError проверка отклонена, ожидающее действие сброшено.
type VerificationError struct {
	Err error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed: %v", e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

type Verifier interface {
	Verify(ctx context.Context, secret string) error
}

// Executor выполняет подтверждённое действие.
type Executor interface {
	Delete(ctx context.Context, m materials.Material) error
	OpenEdit(ctx context.Context, m materials.Material) error
}

type Action struct {
	Token  string
	Kind   Kind
	Record materials.Material
}

var confirmations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "material_gate_confirmations_total",
	Help: "Confirmation attempts for gated material actions.",
}, []string{"kind", "outcome"})

// Gate Idle -> Pending(kind, record) -> {Idle (отмена/ошибка проверки), Executing -> Idle}.
// Одновременно ожидает не больше одного действия.
type Gate struct {
	verifier Verifier
	executor Executor

	mu      sync.Mutex
	phase   Phase
	pending *Action
}

func New(v Verifier, e Executor) *Gate {
	return &Gate{verifier: v, executor: e, phase: PhaseIdle}
}

// Request запоминает намерение и заменяет предыдущее ожидающее действие.
// Во время выполнения новое намерение не принимается.
func (g *Gate) Request(kind Kind, m materials.Material) (string, error) {
	if kind != KindEdit && kind != KindDelete {
		return "", fmt.Errorf("unknown action kind %q", kind)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase == PhaseExecuting {
		return "", ErrBusy
	}
	a := &Action{Token: uuid.NewString(), Kind: kind, Record: m}
	g.pending = a
	g.phase = PhasePending
	return a.Token, nil
}

func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase == PhasePending {
		g.pending = nil
		g.phase = PhaseIdle
	}
}

func (g *Gate) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

func (g *Gate) Pending() (Action, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Action{}, false
	}
	return *g.pending, true
}

// Confirm проверяет secret и, если проверка прошла, выполняет ровно то действие,
// что было записано последним Request с этим token.
func (g *Gate) Confirm(ctx context.Context, token, secret string) error {
	g.mu.Lock()
	if g.phase == PhaseExecuting {
		g.mu.Unlock()
		return ErrBusy
	}
	if g.pending == nil || g.pending.Token != token {
		g.mu.Unlock()
		return ErrNoPending
	}
	a := *g.pending
	g.mu.Unlock()

	verr := g.verifier.Verify(ctx, secret)

	g.mu.Lock()
	// за время проверки действие могли отменить или заменить
	if g.pending == nil || g.pending.Token != token {
		g.mu.Unlock()
		return ErrNoPending
	}
	if verr != nil {
		g.pending = nil
		g.phase = PhaseIdle
		g.mu.Unlock()
		confirmations.WithLabelValues(string(a.Kind), "rejected").Inc()
		var ve *VerificationError
		if errors.As(verr, &ve) {
			return ve
		}
		return &VerificationError{Err: verr}
	}
	g.phase = PhaseExecuting
	g.mu.Unlock()

	var err error
	switch a.Kind {
	case KindDelete:
		err = g.executor.Delete(ctx, a.Record)
	case KindEdit:
		err = g.executor.OpenEdit(ctx, a.Record)
	}

	g.mu.Lock()
	g.pending = nil
	g.phase = PhaseIdle
	g.mu.Unlock()

	if err != nil {
		confirmations.WithLabelValues(string(a.Kind), "failed").Inc()
		return err
	}
	confirmations.WithLabelValues(string(a.Kind), "executed").Inc()
	return nil
}

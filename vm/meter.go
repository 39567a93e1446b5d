package vm

import (
	"context"
	"errors"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
)

var errCyclesExceeded = errors.New("cycles exceeded")

type meter struct {
	used     uint64
	limit    uint64
	exceeded bool
	cancel   context.CancelFunc
}

// add charges n cycles and reports whether the budget still holds. Crossing
// the limit cancels the running group.
func (m *meter) add(n uint64) bool {
	m.used += n
	if m.used < n || m.used > m.limit {
		m.exceeded = true
		if m.cancel != nil {
			m.cancel()
		}
		return false
	}
	return true
}

// charge is add for code running under the guest; it unwinds the guest
// when the budget is gone.
func (m *meter) charge(n uint64) {
	if !m.add(n) {
		panic(errCyclesExceeded)
	}
}

type meterKey struct{}

func withMeter(ctx context.Context, m *meter) context.Context {
	return context.WithValue(ctx, meterKey{}, m)
}

func meterFrom(ctx context.Context) *meter {
	m, _ := ctx.Value(meterKey{}).(*meter)
	return m
}

// callMeter charges every guest function entry.
type callMeter struct {
	cost uint64
}

func (f callMeter) NewFunctionListener(api.FunctionDefinition) experimental.FunctionListener {
	return callListener(f)
}

type callListener struct {
	cost uint64
}

func (l callListener) Before(ctx context.Context, _ api.Module, _ api.FunctionDefinition, _ []uint64, _ experimental.StackIterator) {
	if m := meterFrom(ctx); m != nil {
		m.charge(l.cost)
	}
}

func (l callListener) After(context.Context, api.Module, api.FunctionDefinition, []uint64) {}

func (l callListener) Abort(context.Context, api.Module, api.FunctionDefinition, error) {}

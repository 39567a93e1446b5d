package vm

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/zap"

	"cellkit.dev/harness/chain"
)

const entryExport = "verify"

// Verifier runs the lock and type scripts of resolved transactions. Script
// binaries are WebAssembly modules exporting verify() -> i32 and importing
// their syscalls from the "ckb" host module. Safe for concurrent use.
type Verifier struct {
	cfg     Config
	runtime wazero.Runtime

	mu       sync.Mutex
	compiled map[chain.Hash]wazero.CompiledModule

	msgMu    sync.Mutex
	messages []string
}

func NewVerifier(ctx context.Context, cfg Config) (*Verifier, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	rc := wazero.NewRuntimeConfigInterpreter().WithCloseOnContextDone(true)
	if cfg.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, rc)
	if err := instantiateHost(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("vm: instantiate host module: %w", err)
	}
	return &Verifier{
		cfg:      cfg,
		runtime:  r,
		compiled: make(map[chain.Hash]wazero.CompiledModule),
	}, nil
}

func (v *Verifier) Config() Config {
	return v.cfg
}

// Close releases the runtime and every compiled script.
func (v *Verifier) Close(ctx context.Context) error {
	return v.runtime.Close(ctx)
}

// CapturedMessages returns debug syscall output seen so far. Empty unless
// Config.CaptureDebug is set.
func (v *Verifier) CapturedMessages() []string {
	v.msgMu.Lock()
	defer v.msgMu.Unlock()
	return append([]string(nil), v.messages...)
}

func (v *Verifier) capture(msg string) {
	if !v.cfg.CaptureDebug {
		return
	}
	v.msgMu.Lock()
	v.messages = append(v.messages, msg)
	v.msgMu.Unlock()
}

// Verify runs every script group of rtx against a shared budget of
// maxCycles and returns the cycles consumed. Groups run lock groups first,
// then type groups, and the first failure stops verification.
func (v *Verifier) Verify(ctx context.Context, rtx *ResolvedTx, maxCycles uint64) (uint64, error) {
	if err := rtx.check(); err != nil {
		return 0, err
	}
	groups, err := buildGroups(rtx)
	if err != nil {
		return 0, &ScriptError{Kind: VM_ERR_RESOLVE, Msg: err.Error()}
	}
	witnesses := rtx.Tx.Witnesses()
	m := &meter{limit: maxCycles}
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return m.used, err
		}
		if err := v.runGroup(ctx, rtx, witnesses, g, m); err != nil {
			return m.used, err
		}
	}
	Logger().Debug("transaction verified",
		zap.Int("groups", len(groups)),
		zap.Uint64("cycles", m.used))
	return m.used, nil
}

func (v *Verifier) runGroup(ctx context.Context, rtx *ResolvedTx, witnesses [][]byte, g *scriptGroup, m *meter) error {
	scriptErr := func(kind ErrorKind, msg string) *ScriptError {
		return &ScriptError{
			Kind:       kind,
			ScriptHash: g.hash,
			GroupType:  g.typ,
			GroupIndex: g.index,
			Msg:        msg,
		}
	}
	fail := func(kind ErrorKind, format string, args ...any) error {
		return scriptErr(kind, fmt.Sprintf(format, args...))
	}

	code, err := findCode(rtx, g.script)
	if err != nil {
		return fail(VM_ERR_SCRIPT_NOT_FOUND, "%v", err)
	}
	compiled, err := v.compile(ctx, code)
	if err != nil {
		return fail(VM_ERR_INVALID_SCRIPT, "%v", err)
	}
	if !hasEntry(compiled) {
		return fail(VM_ERR_INVALID_SCRIPT, "missing %s() -> i32 export", entryExport)
	}
	if !m.add(v.cfg.InstantiateCycles) {
		return fail(VM_ERR_EXCEEDED_MAX_CYCLES, "used %d of %d cycles", m.used, m.limit)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.cancel = cancel
	defer func() { m.cancel = nil }()
	runCtx = withSession(withMeter(runCtx, m), &session{
		v:         v,
		rtx:       rtx,
		group:     g,
		witnesses: witnesses,
		meter:     m,
	})

	log := Logger().With(
		zap.String("group", string(g.typ)),
		zap.Int("index", g.index),
		zap.Stringer("script_hash", g.hash))
	log.Debug("running script group", zap.Int("inputs", len(g.inputs)), zap.Int("outputs", len(g.outputs)))

	mod, err := v.runtime.InstantiateModule(runCtx, compiled, wazero.NewModuleConfig().WithName("").WithStartFunctions())
	if err != nil {
		return fail(VM_ERR_INVALID_SCRIPT, "instantiate: %v", err)
	}
	defer func() { _ = mod.Close(context.Background()) }()

	results, err := mod.ExportedFunction(entryExport).Call(runCtx)
	switch {
	case m.exceeded:
		return fail(VM_ERR_EXCEEDED_MAX_CYCLES, "used %d of %d cycles", m.used, m.limit)
	case err != nil && ctx.Err() != nil:
		return ctx.Err()
	case err != nil:
		return fail(VM_ERR_TRAP, "%v", err)
	}

	exit := api.DecodeI32(results[0])
	log.Debug("script group finished", zap.Int32("exit", exit), zap.Uint64("cycles", m.used))
	if exit != 0 {
		e := scriptErr(VM_ERR_VALIDATION_FAILURE, "")
		e.Code = exit
		return e
	}
	return nil
}

func (v *Verifier) compile(ctx context.Context, code []byte) (wazero.CompiledModule, error) {
	key := chain.DataHash(code)
	v.mu.Lock()
	defer v.mu.Unlock()
	if c, ok := v.compiled[key]; ok {
		return c, nil
	}
	c, err := v.runtime.CompileModule(experimental.WithFunctionListenerFactory(ctx, callMeter{cost: v.cfg.CallCycles}), code)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	v.compiled[key] = c
	return c, nil
}

func hasEntry(c wazero.CompiledModule) bool {
	def, ok := c.ExportedFunctions()[entryExport]
	if !ok {
		return false
	}
	res := def.ResultTypes()
	return len(def.ParamTypes()) == 0 && len(res) == 1 && res[0] == api.ValueTypeI32
}

// findCode locates the binary a script points at among the cell deps.
// Data hash types match the dep's data hash, Type matches its type script hash.
func findCode(rtx *ResolvedTx, s chain.Script) ([]byte, error) {
	for _, dep := range rtx.CellDeps {
		switch {
		case s.HashType.ByData():
			if chain.DataHash(dep.Data) == s.CodeHash {
				return dep.Data, nil
			}
		case s.HashType == chain.HashTypeType:
			if dep.Output.Type == nil {
				continue
			}
			if h, err := dep.Output.Type.Hash(); err == nil && h == s.CodeHash {
				return dep.Data, nil
			}
		default:
			return nil, fmt.Errorf("unknown hash type %d", s.HashType)
		}
	}
	return nil, fmt.Errorf("no cell dep provides code hash %s (%s)", s.CodeHash, s.HashType)
}

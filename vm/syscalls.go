package vm

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

const hostModuleName = "ckb"

// Sources accepted by the load syscalls.
const (
	SourceInput       uint32 = 1
	SourceOutput      uint32 = 2
	SourceCellDep     uint32 = 3
	SourceGroupInput  uint32 = 0x101
	SourceGroupOutput uint32 = 0x102
)

const (
	sysIndexOutOfBound int32 = -1
	sysBadSource       int32 = -2
)

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

type session struct {
	v         *Verifier
	rtx       *ResolvedTx
	group     *scriptGroup
	witnesses [][]byte
	meter     *meter
}

type sessionKey struct{}

func withSession(ctx context.Context, s *session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func sessionFrom(ctx context.Context) *session {
	s, ok := ctx.Value(sessionKey{}).(*session)
	if !ok {
		panic(fmt.Errorf("syscall outside of a verification run"))
	}
	return s
}

func instantiateHost(ctx context.Context, r wazero.Runtime) error {
	_, err := r.NewHostModuleBuilder(hostModuleName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(sysLoadScriptArgs), []api.ValueType{i32, i32}, []api.ValueType{i32}).
		Export("load_script_args").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(sysLoadCellData), []api.ValueType{i32, i32, i32, i32}, []api.ValueType{i32}).
		Export("load_cell_data").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(sysLoadWitness), []api.ValueType{i32, i32, i32, i32}, []api.ValueType{i32}).
		Export("load_witness").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(sysLoadCellCapacity), []api.ValueType{i32, i32}, []api.ValueType{i64}).
		Export("load_cell_capacity").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(sysDebug), []api.ValueType{i32, i32}, nil).
		Export("debug").
		Instantiate(ctx)
	return err
}

// copyOut writes min(capacity, len(data)) bytes at ptr and returns the full
// length, so a script can size a second call.
func (s *session) copyOut(mod api.Module, ptr, capacity uint32, data []byte) int32 {
	n := uint32(len(data)) // #nosec G115 -- cell payloads are far below 4GiB.
	if capacity < n {
		n = capacity
	}
	s.meter.charge(s.v.cfg.SyscallCycles + s.v.cfg.ByteCycles*uint64(n))
	if n > 0 {
		mem := mod.Memory()
		if mem == nil || !mem.Write(ptr, data[:n]) {
			panic(fmt.Errorf("syscall: writing %d bytes at %d is outside guest memory", n, ptr))
		}
	}
	return int32(len(data)) // #nosec G115
}

type cellView struct {
	data     []byte
	capacity uint64
}

func (s *session) cell(index, source uint32) (cellView, int32) {
	var at func(i int) cellView
	n := 0
	switch source {
	case SourceInput:
		n = len(s.rtx.Inputs)
		at = func(i int) cellView {
			c := s.rtx.Inputs[i]
			return cellView{data: c.Data, capacity: c.Output.Capacity}
		}
	case SourceOutput:
		n = len(s.rtx.Tx.Outputs)
		at = func(i int) cellView {
			o := s.rtx.Tx.Outputs[i]
			return cellView{data: o.Data, capacity: o.Output.Capacity}
		}
	case SourceCellDep:
		n = len(s.rtx.CellDeps)
		at = func(i int) cellView {
			c := s.rtx.CellDeps[i]
			return cellView{data: c.Data, capacity: c.Output.Capacity}
		}
	case SourceGroupInput:
		n = len(s.group.inputs)
		at = func(i int) cellView {
			c := s.rtx.Inputs[s.group.inputs[i]]
			return cellView{data: c.Data, capacity: c.Output.Capacity}
		}
	case SourceGroupOutput:
		n = len(s.group.outputs)
		at = func(i int) cellView {
			o := s.rtx.Tx.Outputs[s.group.outputs[i]]
			return cellView{data: o.Data, capacity: o.Output.Capacity}
		}
	default:
		return cellView{}, sysBadSource
	}
	if uint64(index) >= uint64(n) {
		return cellView{}, sysIndexOutOfBound
	}
	return at(int(index)), 0
}

func (s *session) witness(index, source uint32) ([]byte, int32) {
	var abs int
	switch source {
	case SourceInput, SourceOutput:
		abs = int(index)
	case SourceGroupInput:
		if uint64(index) >= uint64(len(s.group.inputs)) {
			return nil, sysIndexOutOfBound
		}
		abs = s.group.inputs[index]
	case SourceGroupOutput:
		if uint64(index) >= uint64(len(s.group.outputs)) {
			return nil, sysIndexOutOfBound
		}
		abs = s.group.outputs[index]
	default:
		return nil, sysBadSource
	}
	if abs < 0 || abs >= len(s.witnesses) {
		return nil, sysIndexOutOfBound
	}
	return s.witnesses[abs], 0
}

func sysLoadScriptArgs(ctx context.Context, mod api.Module, stack []uint64) {
	s := sessionFrom(ctx)
	stack[0] = api.EncodeI32(s.copyOut(mod, api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), s.group.script.Args))
}

func sysLoadCellData(ctx context.Context, mod api.Module, stack []uint64) {
	s := sessionFrom(ctx)
	ptr, capacity := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	c, code := s.cell(api.DecodeU32(stack[2]), api.DecodeU32(stack[3]))
	if code != 0 {
		s.meter.charge(s.v.cfg.SyscallCycles)
		stack[0] = api.EncodeI32(code)
		return
	}
	stack[0] = api.EncodeI32(s.copyOut(mod, ptr, capacity, c.data))
}

func sysLoadWitness(ctx context.Context, mod api.Module, stack []uint64) {
	s := sessionFrom(ctx)
	ptr, capacity := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	w, code := s.witness(api.DecodeU32(stack[2]), api.DecodeU32(stack[3]))
	if code != 0 {
		s.meter.charge(s.v.cfg.SyscallCycles)
		stack[0] = api.EncodeI32(code)
		return
	}
	stack[0] = api.EncodeI32(s.copyOut(mod, ptr, capacity, w))
}

func sysLoadCellCapacity(ctx context.Context, _ api.Module, stack []uint64) {
	s := sessionFrom(ctx)
	s.meter.charge(s.v.cfg.SyscallCycles)
	c, code := s.cell(api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
	if code != 0 {
		stack[0] = api.EncodeI64(int64(code))
		return
	}
	stack[0] = api.EncodeI64(int64(c.capacity)) // #nosec G115 -- shannon amounts fit in i64.
}

func sysDebug(ctx context.Context, mod api.Module, stack []uint64) {
	s := sessionFrom(ctx)
	ptr, n := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	s.meter.charge(s.v.cfg.SyscallCycles + s.v.cfg.ByteCycles*uint64(n))
	var msg string
	if mem := mod.Memory(); mem != nil {
		if b, ok := mem.Read(ptr, n); ok {
			msg = string(b)
		}
	}
	Logger().Debug("script debug",
		zap.Stringer("script_hash", s.group.hash),
		zap.String("group", string(s.group.typ)),
		zap.String("msg", msg))
	s.v.capture(msg)
}

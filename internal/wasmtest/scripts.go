package wasmtest

import "github.com/tetratelabs/wazero/api"

const hostModule = "ckb"

// scratch is the byte capacity scripts hand to load syscalls.
const scratch = 256

func withMemory(b *Builder, verify uint32) []byte {
	b.Memory(1)
	b.ExportMemory("memory")
	b.ExportFunc("verify", verify)
	return b.Build()
}

// ExitCode returns a script whose verify always returns code.
func ExitCode(code int32) []byte {
	b := NewBuilder()
	v := b.Func(nil, []api.ValueType{I32}, I32Const(code))
	return withMemory(b, v)
}

// AlwaysSuccess is ExitCode(0).
func AlwaysSuccess() []byte { return ExitCode(0) }

// Calls returns a script that calls an empty helper n times, then succeeds.
func Calls(n int) []byte {
	b := NewBuilder()
	tick := b.Func(nil, nil)
	body := make([][]byte, 0, n+1)
	for i := 0; i < n; i++ {
		body = append(body, Call(tick))
	}
	body = append(body, I32Const(0))
	v := b.Func(nil, []api.ValueType{I32}, body...)
	return withMemory(b, v)
}

// Spin returns a script that calls a helper in an endless loop.
func Spin() []byte {
	b := NewBuilder()
	tick := b.Func(nil, nil)
	v := b.Func(nil, []api.ValueType{I32}, Forever(Call(tick)), I32Const(0))
	return withMemory(b, v)
}

// Trap returns a script that executes unreachable.
func Trap() []byte {
	b := NewBuilder()
	v := b.Func(nil, []api.ValueType{I32}, Unreachable())
	return withMemory(b, v)
}

// NoVerify returns a valid module that does not export verify.
func NoVerify() []byte {
	b := NewBuilder()
	f := b.Func(nil, []api.ValueType{I32}, I32Const(0))
	b.ExportFunc("main", f)
	return b.Build()
}

// ArgByte returns a script whose exit code is the first byte of its script
// args, so it passes only when args start with 0 or are empty.
func ArgByte() []byte {
	b := NewBuilder()
	load := b.ImportFunc(hostModule, "load_script_args", []api.ValueType{I32, I32}, []api.ValueType{I32})
	v := b.Func(nil, []api.ValueType{I32},
		I32Const(0), I32Const(scratch), Call(load), Drop(),
		I32Const(0), I32Load8U(0),
	)
	return withMemory(b, v)
}

// WitnessByte returns a script whose exit code is the first byte of witness
// 0 of source, or 99 when that witness is missing.
func WitnessByte(source int32) []byte {
	return firstByteOf("load_witness", source)
}

// DataByte returns a script whose exit code is the first byte of the data
// of cell 0 of source, or 99 when there is no such cell.
func DataByte(source int32) []byte {
	return firstByteOf("load_cell_data", source)
}

func firstByteOf(syscall string, source int32) []byte {
	b := NewBuilder()
	load := b.ImportFunc(hostModule, syscall, []api.ValueType{I32, I32, I32, I32}, []api.ValueType{I32})
	v := b.Func(nil, []api.ValueType{I32},
		I32Const(0), I32Const(scratch), I32Const(0), I32Const(source), Call(load),
		I32Const(0), I32LtS(),
		IfI32(I32Const(99), append(I32Const(0), I32Load8U(0)...)),
	)
	return withMemory(b, v)
}

// CapacityIs returns a script that passes when cell 0 of source holds
// exactly want shannons and returns 1 otherwise.
func CapacityIs(source int32, want int64) []byte {
	b := NewBuilder()
	load := b.ImportFunc(hostModule, "load_cell_capacity", []api.ValueType{I32, I32}, []api.ValueType{I64})
	v := b.Func(nil, []api.ValueType{I32},
		I32Const(0), I32Const(source), Call(load), I64Const(want), I64Eq(), I32Eqz(),
	)
	return withMemory(b, v)
}

// DebugArgs returns a script that prints its args through the debug
// syscall, then succeeds.
func DebugArgs() []byte {
	b := NewBuilder()
	load := b.ImportFunc(hostModule, "load_script_args", []api.ValueType{I32, I32}, []api.ValueType{I32})
	debug := b.ImportFunc(hostModule, "debug", []api.ValueType{I32, I32}, nil)
	v := b.Func(nil, []api.ValueType{I32},
		I32Const(0),
		I32Const(0), I32Const(scratch), Call(load),
		Call(debug),
		I32Const(0),
	)
	return withMemory(b, v)
}

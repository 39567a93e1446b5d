// Package wasmtest assembles small WebAssembly modules for tests, so script
// behaviour can be exercised without a toolchain or checked-in binaries.
package wasmtest

import "github.com/tetratelabs/wazero/api"

const (
	I32 = api.ValueTypeI32
	I64 = api.ValueTypeI64
)

type funcType struct {
	params  []api.ValueType
	results []api.ValueType
}

type importFunc struct {
	module string
	name   string
	typ    uint32
}

type localFunc struct {
	typ  uint32
	body []byte
}

type export struct {
	name string
	kind byte
	idx  uint32
}

// Builder builds a module with imported functions, local functions, one
// optional memory and exports. Imports must be declared before local
// functions because they share the function index space.
type Builder struct {
	types    []funcType
	imports  []importFunc
	funcs    []localFunc
	memPages uint32
	hasMem   bool
	exports  []export
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) typeIndex(params, results []api.ValueType) uint32 {
	for i, t := range b.types {
		if sameTypes(t.params, params) && sameTypes(t.results, results) {
			return uint32(i)
		}
	}
	b.types = append(b.types, funcType{params: params, results: results})
	return uint32(len(b.types) - 1)
}

func sameTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ImportFunc declares an imported function and returns its index.
func (b *Builder) ImportFunc(module, name string, params, results []api.ValueType) uint32 {
	if len(b.funcs) > 0 {
		panic("wasmtest: imports must precede local functions")
	}
	b.imports = append(b.imports, importFunc{module: module, name: name, typ: b.typeIndex(params, results)})
	return uint32(len(b.imports) - 1)
}

// Func adds a local function. body holds the instructions without the
// trailing end opcode; the function has no locals beyond its params.
func (b *Builder) Func(params, results []api.ValueType, body ...[]byte) uint32 {
	var code []byte
	for _, ins := range body {
		code = append(code, ins...)
	}
	b.funcs = append(b.funcs, localFunc{typ: b.typeIndex(params, results), body: code})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

func (b *Builder) Memory(pages uint32) {
	b.memPages = pages
	b.hasMem = true
}

func (b *Builder) ExportFunc(name string, idx uint32) {
	b.exports = append(b.exports, export{name: name, kind: 0x00, idx: idx})
}

func (b *Builder) ExportMemory(name string) {
	b.exports = append(b.exports, export{name: name, kind: 0x02, idx: 0})
}

func (b *Builder) Build() []byte {
	var wasm []byte
	wasm = append(wasm, 0x00, 0x61, 0x73, 0x6d)
	wasm = append(wasm, 0x01, 0x00, 0x00, 0x00)

	if len(b.types) > 0 {
		var s []byte
		s = append(s, uleb(uint32(len(b.types)))...)
		for _, t := range b.types {
			s = append(s, 0x60)
			s = append(s, valTypes(t.params)...)
			s = append(s, valTypes(t.results)...)
		}
		wasm = appendSection(wasm, 0x01, s)
	}
	if len(b.imports) > 0 {
		var s []byte
		s = append(s, uleb(uint32(len(b.imports)))...)
		for _, imp := range b.imports {
			s = append(s, name(imp.module)...)
			s = append(s, name(imp.name)...)
			s = append(s, 0x00)
			s = append(s, uleb(imp.typ)...)
		}
		wasm = appendSection(wasm, 0x02, s)
	}
	if len(b.funcs) > 0 {
		var s []byte
		s = append(s, uleb(uint32(len(b.funcs)))...)
		for _, f := range b.funcs {
			s = append(s, uleb(f.typ)...)
		}
		wasm = appendSection(wasm, 0x03, s)
	}
	if b.hasMem {
		s := []byte{0x01, 0x00}
		s = append(s, uleb(b.memPages)...)
		wasm = appendSection(wasm, 0x05, s)
	}
	if len(b.exports) > 0 {
		var s []byte
		s = append(s, uleb(uint32(len(b.exports)))...)
		for _, e := range b.exports {
			s = append(s, name(e.name)...)
			s = append(s, e.kind)
			s = append(s, uleb(e.idx)...)
		}
		wasm = appendSection(wasm, 0x07, s)
	}
	if len(b.funcs) > 0 {
		var s []byte
		s = append(s, uleb(uint32(len(b.funcs)))...)
		for _, f := range b.funcs {
			body := append([]byte{0x00}, f.body...) // no local declarations
			body = append(body, 0x0b)
			s = append(s, uleb(uint32(len(body)))...)
			s = append(s, body...)
		}
		wasm = appendSection(wasm, 0x0a, s)
	}
	return wasm
}

func appendSection(dst []byte, id byte, contents []byte) []byte {
	dst = append(dst, id)
	dst = append(dst, uleb(uint32(len(contents)))...)
	return append(dst, contents...)
}

func valTypes(ts []api.ValueType) []byte {
	out := uleb(uint32(len(ts)))
	for _, t := range ts {
		out = append(out, valType(t))
	}
	return out
}

func valType(t api.ValueType) byte {
	switch t {
	case api.ValueTypeI64:
		return 0x7e
	case api.ValueTypeF32:
		return 0x7d
	case api.ValueTypeF64:
		return 0x7c
	default:
		return 0x7f
	}
}

func name(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		out = append(out, c)
		if v == 0 {
			return out
		}
	}
}

func sleb[T int32 | int64](v T) []byte {
	var out []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(out, c)
		}
		out = append(out, c|0x80)
	}
}

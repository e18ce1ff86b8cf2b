package ir

import (
	"fmt"
	"strings"
)

// Linkage mirrors LLVM's two linkages the core ever needs: external
// (visible across compilation units) and internal (file-local).
type Linkage int

const (
	External Linkage = iota
	Internal
)

// Param is one formal parameter of a Function.
type Param struct {
	Name string
	T    Type
}

// BasicBlock is a labeled sequence of instructions ending in exactly one
// terminator (Br/CondBr/Ret/RetVoid).
type BasicBlock struct {
	Label  string
	Insns  []string
	sealed bool // true once a terminator has been emitted
}

// Function is a declared or defined function. Declarations (IsDecl) have
// no blocks; definitions always end with at least one.
type Function struct {
	Name     string
	FT       *FuncType
	Params   []Param
	Linkage  Linkage
	IsDecl   bool
	Blocks   []*BasicBlock
	DebugSub string // optional debug subprogram metadata id, "" if -g wasn't requested
}

// Module is a full compilation unit: its functions and global string
// constants, plus the bookkeeping a Builder needs to generate
// fresh temporary names.
type Module struct {
	Name      string
	Functions []*Function
	Globals   []GlobalString
	byName    map[string]*Function
	nextTemp  int
	nextBlock int
	nextConst int
}

// NewModule creates an empty module named name.
func NewModule(name string) *Module {
	return &Module{Name: name, byName: make(map[string]*Function)}
}

// NewFunction creates (and registers) a function in m. linkage External
// with IsDecl true creates an extern declaration (lazily declared runtime
// externs); otherwise the caller must append at least one basic block
// before the module is considered complete.
func (m *Module) NewFunction(name string, ft *FuncType, params []Param, linkage Linkage, isDecl bool) *Function {
	if fn, ok := m.byName[name]; ok {
		return fn
	}
	fn := &Function{Name: name, FT: ft, Params: params, Linkage: linkage, IsDecl: isDecl}
	m.Functions = append(m.Functions, fn)
	m.byName[name] = fn
	return fn
}

// Lookup returns a previously created function by name.
func (m *Module) Lookup(name string) (*Function, bool) {
	fn, ok := m.byName[name]
	return fn, ok
}

// AppendBlock appends and returns a new basic block on fn, auto-naming it
// if label is "".
func (fn *Function) AppendBlock(m *Module, label string) *BasicBlock {
	if label == "" {
		label = fmt.Sprintf("bb%d", m.nextBlock)
		m.nextBlock++
	}
	bb := &BasicBlock{Label: label}
	fn.Blocks = append(fn.Blocks, bb)
	return bb
}

// GlobalStringConst interns a global constant string, returning a Value
// that addresses its first byte.
func (m *Module) GlobalStringConst(value string) GlobalString {
	for _, g := range m.Globals {
		if g.Value == value {
			return g
		}
	}
	name := fmt.Sprintf(".str.%d", len(m.Globals))
	g := GlobalString{Name: name, Value: value}
	m.Globals = append(m.Globals, g)
	return g
}

// Builder is bound to one Function and emits into whichever BasicBlock is
// currently the insert point.
type Builder struct {
	m   *Module
	fn  *Function
	cur *BasicBlock
}

// NewBuilder creates a Builder for fn, initially inserting into bb.
func NewBuilder(m *Module, fn *Function, bb *BasicBlock) *Builder {
	return &Builder{m: m, fn: fn, cur: bb}
}

// SetInsertPoint redirects subsequent emission to bb.
func (b *Builder) SetInsertPoint(bb *BasicBlock) { b.cur = bb }

// Block returns the current insert point.
func (b *Builder) Block() *BasicBlock { return b.cur }

// Sealed reports whether bb already ends in a terminator.
func (bb *BasicBlock) Sealed() bool { return bb.sealed }

func (b *Builder) freshTemp() string {
	name := fmt.Sprintf("t%d", b.m.nextTemp)
	b.m.nextTemp++
	return name
}

func (b *Builder) emit(line string) {
	if b.cur.sealed {
		panic("ir: emit into a block that already has a terminator")
	}
	b.cur.Insns = append(b.cur.Insns, line)
}

func (b *Builder) emitTerm(line string) {
	b.emit(line)
	b.cur.sealed = true
}

// ---- allocation / memory ----

// GenEntryBlockVar allocates stack storage for t in the function's entry
// block, regardless of the builder's current insert point — every `let`
// slot lives in the entry block so a loop body doesn't re-allocate stack
// space on each iteration.
func (b *Builder) GenEntryBlockVar(t Type, name string) Reg {
	entry := b.fn.Blocks[0]
	if name == "" {
		name = b.freshTemp()
	}
	reg := Reg{Name: name, T: PointerType{Elem: t}}
	entry.Insns = append([]string{fmt.Sprintf("%%%s = alloca %s", name, t)}, entry.Insns...)
	return reg
}

// GenVar allocates stack storage at the current insert point
// (gen_var) rather than forcing it into the entry block.
func (b *Builder) GenVar(t Type, name string) Reg {
	if name == "" {
		name = b.freshTemp()
	}
	b.emit(fmt.Sprintf("%%%s = alloca %s", name, t))
	return Reg{Name: name, T: PointerType{Elem: t}}
}

// GenGlobalVar returns a pointer-typed reference to the module-scope
// variable g.<name> of type t. It records nothing in m, so no definition
// of the variable appears in the rendered module.
func (m *Module) GenGlobalVar(name string, t Type, linkage Linkage) Reg {
	return Reg{Name: "g." + name, T: PointerType{Elem: t}}
}

// ---- arithmetic / compare / bitwise / shift / cast ----

// BinOp is a family tag for Builder.Arith/Cmp, spelled out as opcode text
// in the rendered module.
type BinOp string

const (
	Add  BinOp = "add"
	Sub  BinOp = "sub"
	Mul  BinOp = "mul"
	SDiv BinOp = "sdiv"
	UDiv BinOp = "udiv"
	SRem BinOp = "srem"
	URem BinOp = "urem"
	FAdd BinOp = "fadd"
	FSub BinOp = "fsub"
	FMul BinOp = "fmul"
	FDiv BinOp = "fdiv"
	And  BinOp = "and"
	Or   BinOp = "or"
	Xor  BinOp = "xor"
	Shl  BinOp = "shl"
	LShr BinOp = "lshr"
	AShr BinOp = "ashr"
)

// Arith emits a binary arithmetic/bitwise/shift instruction.
func (b *Builder) Arith(op BinOp, lhs, rhs Value) Reg {
	name := b.freshTemp()
	b.emit(fmt.Sprintf("%%%s = %s %s %s, %s", name, op, lhs.Type(), lhs, rhs))
	return Reg{Name: name, T: lhs.Type()}
}

// CmpOp is a comparison predicate.
type CmpOp string

const (
	CmpEQ  CmpOp = "eq"
	CmpNE  CmpOp = "ne"
	CmpSLT CmpOp = "slt"
	CmpSLE CmpOp = "sle"
	CmpSGT CmpOp = "sgt"
	CmpSGE CmpOp = "sge"
	CmpULT CmpOp = "ult"
	CmpULE CmpOp = "ule"
	CmpUGT CmpOp = "ugt"
	CmpUGE CmpOp = "uge"
	CmpOEQ CmpOp = "oeq" // float
	CmpONE CmpOp = "one"
	CmpOLT CmpOp = "olt"
	CmpOLE CmpOp = "ole"
	CmpOGT CmpOp = "ogt"
	CmpOGE CmpOp = "oge"
)

// Cmp emits an integer (icmp) or float (fcmp) comparison, returning an i1.
func (b *Builder) Cmp(float bool, op CmpOp, lhs, rhs Value) Reg {
	name := b.freshTemp()
	kind := "icmp"
	if float {
		kind = "fcmp"
	}
	b.emit(fmt.Sprintf("%%%s = %s %s %s %s, %s", name, kind, op, lhs.Type(), lhs, rhs))
	return Reg{Name: name, T: I1}
}

// CastKind names the IR-level cast opcode, matching package types' CastOp
// naming one-to-one (package types decides *which* kind applies; package
// ir only knows how to render it).
type CastKind string

const (
	Trunc    CastKind = "trunc"
	SExt     CastKind = "sext"
	ZExt     CastKind = "zext"
	SIToFP   CastKind = "sitofp"
	UIToFP   CastKind = "uitofp"
	FPToSI   CastKind = "fptosi"
	FPToUI   CastKind = "fptoui"
	FPTrunc  CastKind = "fptrunc"
	FPExt    CastKind = "fpext"
	Bitcast  CastKind = "bitcast"
	PtrToInt CastKind = "ptrtoint"
	IntToPtr CastKind = "inttoptr"
)

// Cast emits a conversion instruction from v to type t.
func (b *Builder) Cast(kind CastKind, v Value, t Type) Reg {
	name := b.freshTemp()
	b.emit(fmt.Sprintf("%%%s = %s %s %s to %s", name, kind, v.Type(), v, t))
	return Reg{Name: name, T: t}
}

// ---- aggregates / memory access ----

// GEP emits a getelementptr instruction indexing into base with the given
// index path (an int constant 0 followed by field/element indices, as
// LLVM's GEP expects).
func (b *Builder) GEP(base Value, elemType Type, indices []Value, resultType Type) Reg {
	name := b.freshTemp()
	parts := make([]string, len(indices))
	for i, ix := range indices {
		parts[i] = fmt.Sprintf("%s %s", ix.Type(), ix)
	}
	b.emit(fmt.Sprintf("%%%s = getelementptr %s, %s %s, %s", name, elemType, base.Type(), base, strings.Join(parts, ", ")))
	return Reg{Name: name, T: PointerType{Elem: resultType}}
}

// Load emits a load from a pointer value.
func (b *Builder) Load(ptr Value, t Type) Reg {
	name := b.freshTemp()
	b.emit(fmt.Sprintf("%%%s = load %s, %s %s", name, t, ptr.Type(), ptr))
	return Reg{Name: name, T: t}
}

// Store emits a store of v into ptr.
func (b *Builder) Store(v Value, ptr Value) {
	b.emit(fmt.Sprintf("store %s %s, %s %s", v.Type(), v, ptr.Type(), ptr))
}

// Memset emits an aligned llvm.memset-equivalent call.
func (b *Builder) Memset(dst Value, val Value, size Value, align int) {
	b.emit(fmt.Sprintf("call void @llvm.memset(%s %s, %s %s, %s %s, i32 %d)", dst.Type(), dst, val.Type(), val, size.Type(), size, align))
}

// Memcpy emits an aligned llvm.memcpy-equivalent call.
func (b *Builder) Memcpy(dst, src, size Value, align int) {
	b.emit(fmt.Sprintf("call void @llvm.memcpy(%s %s, %s %s, %s %s, i32 %d)", dst.Type(), dst, src.Type(), src, size.Type(), size, align))
}

// ---- control flow ----

// Br emits an unconditional branch, sealing the current block.
func (b *Builder) Br(target *BasicBlock) {
	b.emitTerm(fmt.Sprintf("br label %%%s", target.Label))
}

// CondBr emits a conditional branch, sealing the current block.
func (b *Builder) CondBr(cond Value, then, els *BasicBlock) {
	b.emitTerm(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", cond, then.Label, els.Label))
}

// Ret emits a value-returning return, sealing the current block.
func (b *Builder) Ret(v Value) {
	b.emitTerm(fmt.Sprintf("ret %s %s", v.Type(), v))
}

// RetVoid emits a void return, sealing the current block.
func (b *Builder) RetVoid() {
	b.emitTerm("ret void")
}

// Call emits a call instruction. The result Reg is meaningless (and
// omitted from the rendered text) when retType is Void.
func (b *Builder) Call(callee string, retType Type, args []Value) Reg {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%s %s", a.Type(), a)
	}
	if retType == Type(Void) {
		b.emit(fmt.Sprintf("call void @%s(%s)", callee, strings.Join(parts, ", ")))
		return Reg{}
	}
	name := b.freshTemp()
	b.emit(fmt.Sprintf("%%%s = call %s @%s(%s)", name, retType, callee, strings.Join(parts, ", ")))
	return Reg{Name: name, T: retType}
}

// PhiIncoming is one (value, predecessor) pair of a Phi instruction.
type PhiIncoming struct {
	Value Value
	Block *BasicBlock
}

// Phi emits a phi node merging values from multiple predecessors.
func (b *Builder) Phi(t Type, incoming []PhiIncoming) Reg {
	name := b.freshTemp()
	parts := make([]string, len(incoming))
	for i, in := range incoming {
		parts[i] = fmt.Sprintf("[ %s, %%%s ]", in.Value, in.Block.Label)
	}
	b.emit(fmt.Sprintf("%%%s = phi %s %s", name, t, strings.Join(parts, ", ")))
	return Reg{Name: name, T: t}
}

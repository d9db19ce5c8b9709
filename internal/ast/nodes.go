package ast

// Node is implemented by every tree node.
type Node interface {
	Range() Span
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Program is a parsed source file: global declarations, user functions and
// the single actions block that is the entry point of an order.
type Program struct {
	Span
	Globals   []*Global
	Functions []*Function
	Actions   *Block
}

// Global declares a process-wide variable with a default value that can be
// overridden by the caller when the order starts.
type Global struct {
	Span
	Name  string
	Value Expr
}

// Function is a user-defined function declaration.
type Function struct {
	Span
	Name   string
	Params []*Param
	Body   *Block
}

// Param is a formal parameter of a user function.
type Param struct {
	Span
	Name string
}

// BinaryOp is the operator of a Binary expression.
type BinaryOp string

const (
	OpAdd          BinaryOp = "+"
	OpSub          BinaryOp = "-"
	OpMul          BinaryOp = "*"
	OpDiv          BinaryOp = "/"
	OpMod          BinaryOp = "%"
	OpEqual        BinaryOp = "=="
	OpNotEqual     BinaryOp = "!="
	OpLess         BinaryOp = "<"
	OpLessEqual    BinaryOp = "<="
	OpGreater      BinaryOp = ">"
	OpGreaterEqual BinaryOp = ">="
	OpCoalesce     BinaryOp = "??"
)

// LogicOp is the operator of a Logic expression.
type LogicOp string

const (
	OpAnd LogicOp = "and"
	OpOr  LogicOp = "or"
)

// UnaryOp is the operator of a Unary expression.
type UnaryOp string

const (
	OpNegate  UnaryOp = "-"
	OpFlip    UnaryOp = "!"
	OpReceive UnaryOp = "<-"
)

// Literal holds nil, a bool, a float64 or a string.
type Literal struct {
	Span
	Value any
}

type Array struct {
	Span
	Elements []Expr
}

// Object is an object literal. Entries keep their source order.
type Object struct {
	Span
	Entries []*ObjectEntry
}

type ObjectEntry struct {
	Span
	Key   string
	Value Expr
}

type Binary struct {
	Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

type Logic struct {
	Span
	Op    LogicOp
	Left  Expr
	Right Expr
}

type Unary struct {
	Span
	Op      UnaryOp
	Operand Expr
}

type Group struct {
	Span
	Inner Expr
}

// Identifier names a variable, a user function or, with a non-empty Scope
// (`log::info`), a native function.
type Identifier struct {
	Span
	Scope []string
	Name  string
}

// Member is `object.name`.
type Member struct {
	Span
	Object Expr
	Name   string
}

// Offset is `target[index]`.
type Offset struct {
	Span
	Target Expr
	Index  Expr
}

// Call is a function call with positional arguments followed by named ones.
type Call struct {
	Span
	Callee Expr
	Args   []Expr
	Named  []*NamedArg
}

type NamedArg struct {
	Span
	Name  string
	Value Expr
}

// Spawn evaluates Expr concurrently and yields a channel receiving its value.
type Spawn struct {
	Span
	Expr Expr
}

func (*Literal) exprNode()    {}
func (*Array) exprNode()      {}
func (*Object) exprNode()     {}
func (*Binary) exprNode()     {}
func (*Logic) exprNode()      {}
func (*Unary) exprNode()      {}
func (*Group) exprNode()      {}
func (*Identifier) exprNode() {}
func (*Member) exprNode()     {}
func (*Offset) exprNode()     {}
func (*Call) exprNode()       {}
func (*Spawn) exprNode()      {}

type Block struct {
	Span
	Stmts []Stmt
}

// Let declares a variable in the current scope.
type Let struct {
	Span
	Name  string
	Value Expr
}

// Assign overwrites the nearest existing binding of Name.
type Assign struct {
	Span
	Name  string
	Value Expr
}

type ExprStmt struct {
	Span
	X Expr
}

// If is a conditional. Else is nil, a *Block or an *If.
type If struct {
	Span
	Cond Expr
	Then *Block
	Else Stmt
}

type While struct {
	Span
	Cond Expr
	Body *Block
}

type Break struct {
	Span
}

type Continue struct {
	Span
}

// Return carries an optional value; a nil Value returns null.
type Return struct {
	Span
	Value Expr
}

// Send is `channel <- value`.
type Send struct {
	Span
	Channel Expr
	Value   Expr
}

// Par runs its blocks concurrently and waits for all of them.
type Par struct {
	Span
	Blocks []*Block
}

func (*Block) stmtNode()    {}
func (*Let) stmtNode()      {}
func (*Assign) stmtNode()   {}
func (*ExprStmt) stmtNode() {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*Break) stmtNode()    {}
func (*Continue) stmtNode() {}
func (*Return) stmtNode()   {}
func (*Send) stmtNode()     {}
func (*Par) stmtNode()      {}

// FullName renders the identifier with its module scope, e.g. `log::info`.
func (id *Identifier) FullName() string {
	name := ""
	for _, s := range id.Scope {
		name += s + "::"
	}
	return name + id.Name
}

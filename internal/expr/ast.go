package expr

// Node is an expression tree node. The variant set is closed: Const, Var, Neg,
// Binary and Call. Evaluation, differentiation and printing switch over all five.
type Node interface {
	node()
}

// Const is a numeric literal or a named constant such as pi
type Const struct {
	Value float64
	// Name is set for named constants and used when printing
	Name string
}

// Var is the free variable x
type Var struct{}

// Neg is unary minus
type Neg struct {
	X Node
}

// Op is a binary operator
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	}
	return "?"
}

// Binary applies Op to two operands
type Binary struct {
	Op    Op
	Left  Node
	Right Node
}

// Fn is an elementary function of one argument
type Fn uint8

const (
	FnSin Fn = iota
	FnCos
	FnTan
	FnCot
	FnSec
	FnCsc
	FnAsin
	FnAcos
	FnAtan
	FnSinh
	FnCosh
	FnTanh
	FnExp
	FnLog
	FnLog10
	FnLog2
	FnSqrt
	FnCbrt
	FnAbs
	FnSign
)

var fnNames = [...]string{
	FnSin:   "sin",
	FnCos:   "cos",
	FnTan:   "tan",
	FnCot:   "cot",
	FnSec:   "sec",
	FnCsc:   "csc",
	FnAsin:  "asin",
	FnAcos:  "acos",
	FnAtan:  "atan",
	FnSinh:  "sinh",
	FnCosh:  "cosh",
	FnTanh:  "tanh",
	FnExp:   "exp",
	FnLog:   "log",
	FnLog10: "log10",
	FnLog2:  "log2",
	FnSqrt:  "sqrt",
	FnCbrt:  "cbrt",
	FnAbs:   "abs",
	FnSign:  "sign",
}

// functions maps accepted spellings to functions; ln is an alias of log
var functions = map[string]Fn{
	"ln": FnLog,
}

func init() {
	for fn, name := range fnNames {
		functions[name] = Fn(fn)
	}
}

func (f Fn) String() string {
	if int(f) < len(fnNames) {
		return fnNames[f]
	}
	return "?"
}

// Call applies Fn to a single argument
type Call struct {
	Fn  Fn
	Arg Node
}

func (Const) node()  {}
func (Var) node()    {}
func (Neg) node()    {}
func (Binary) node() {}
func (Call) node()   {}

// Functions returns the names of the supported functions, aliases included
func Functions() []string {
	names := make([]string, 0, len(functions))
	for _, name := range fnNames {
		names = append(names, name)
	}
	return append(names, "ln")
}

// containsVar reports whether x occurs anywhere below n
func containsVar(n Node) bool {
	switch n := n.(type) {
	case Const:
		return false
	case Var:
		return true
	case Neg:
		return containsVar(n.X)
	case Binary:
		return containsVar(n.Left) || containsVar(n.Right)
	case Call:
		return containsVar(n.Arg)
	}
	return false
}

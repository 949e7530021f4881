package graph

// defaultBuiltinNames are call names that refer to language-level builtins
// rather than repository code. A mention of one of these never produces an
// edge or a diagnostic. The set is shared across languages; names are
// unambiguous enough in practice that per-language splitting is not worth
// the bookkeeping.
var defaultBuiltinNames = []string{
	// Python
	"print", "len", "range", "str", "int", "float", "bool", "list", "dict",
	"set", "tuple", "open", "enumerate", "zip", "map", "filter", "sorted",
	"reversed", "sum", "min", "max", "abs", "round", "type", "isinstance",
	"issubclass", "hasattr", "getattr", "setattr", "super", "repr", "hash",
	"id", "iter", "next", "vars", "format", "any", "all", "input",

	// Go
	"make", "cap", "append", "copy", "delete", "panic", "recover",
	"println", "close", "clear", "complex", "real", "imag",

	// JavaScript / TypeScript
	"require", "parseInt", "parseFloat", "isNaN", "String", "Number",
	"Boolean", "Array", "Object", "Symbol", "Promise", "Error",
	"setTimeout", "setInterval", "clearTimeout", "clearInterval",

	// Rust
	"Some", "Ok", "Err", "vec", "panic", "format", "println", "String",
}

// DefaultBuiltins returns the builtin-name filter applied when no custom
// set is configured. Extra names extend the default set.
func DefaultBuiltins(extra ...string) map[string]bool {
	m := make(map[string]bool, len(defaultBuiltinNames)+len(extra))
	for _, n := range defaultBuiltinNames {
		m[n] = true
	}
	for _, n := range extra {
		m[n] = true
	}
	return m
}

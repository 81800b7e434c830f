// Package ast defines the AST facade the duplicate detection core depends
// on (spec §6 "AST facade (inbound)"). The core never imports a concrete
// parser; it only sees SourceUnit, Node, and NameResolver. Concrete
// implementations live in sibling packages (javaast, goast), each backed by
// a go-tree-sitter grammar.
package ast

import "github.com/e4c5/dupscan/internal/types"

// LiteralCategory classifies a literal expression's atom category.
type LiteralCategory string

const (
	LiteralNone    LiteralCategory = ""
	LiteralString  LiteralCategory = "string-literal"
	LiteralInt     LiteralCategory = "int-literal"
	LiteralLong    LiteralCategory = "long-literal"
	LiteralDouble  LiteralCategory = "double-literal"
	LiteralBoolean LiteralCategory = "boolean-literal"
	LiteralNull    LiteralCategory = "null-literal"
)

// Node is one node of a parsed syntax tree. All operations are
// side-effect-free. Position is 1-based line, 0-based column.
type Node interface {
	Kind() string
	Text() string
	Start() types.Position
	End() types.Position
	ChildCount() int
	Child(i int) Node

	// Expression facets. ResolvedType answers types.UnknownType for a node
	// the adapter cannot type; Name and Literal answer "" and LiteralNone
	// for nodes they do not apply to.
	ResolvedType() string
	Name() string
	Literal() LiteralCategory

	// EnclosingCallable returns the node of the method, constructor,
	// initializer, or lambda whose body statements contain this node, as
	// recorded by the adapter, or nil when none was recorded.
	EnclosingCallable() Node
}

// Callable is a method, constructor, static/instance initializer, or
// lambda body that owns a sequence of statements.
type Callable struct {
	Node      Node // nil for initializers with no declaration node
	Container types.ContainerKind
	Body      []Node // the statements of the callable's block, in order
	HostClass string // FQN or simple name of the enclosing class, "" if none
	IsStatic  bool
	IsTest    bool // host class name ends in "Test" or is annotated as one
}

// Field is a declared instance or static field.
type Field struct {
	Name     string
	Type     string
	IsStatic bool
}

// ClassInfo groups the callables and fields owned by one class/type.
type ClassInfo struct {
	FQN    string
	Fields []Field
}

// SourceUnit is a parsed file: a syntax tree plus its path. A source unit
// outlives every Window extracted from it.
type SourceUnit struct {
	Path      string
	FileID    types.FileID
	Callables []Callable
	Classes   []ClassInfo
	Resolver  NameResolver
}

// ResolvedName is what NameResolver returns for an identifier.
type ResolvedName struct {
	Name  string
	Type  string
	Scope types.Scope
}

// NameResolver resolves identifiers to their declaring scope and type.
// Implementations may return types.ScopeUnknown / types.UnknownType when
// resolution is not possible; this never aborts analysis (§7
// resolution-unknown).
type NameResolver interface {
	Resolve(identifier Node) ResolvedName
	// CommonSupertype returns the least common supertype of two resolved
	// type names, or types.UnknownType if the facade cannot determine one.
	CommonSupertype(t1, t2 string) string
}

// Parser produces SourceUnits from files on disk. It is the one capability
// the core's spec explicitly treats as external (§1); this interface just
// gives the orchestrator (C13) something concrete to call.
type Parser interface {
	// Language reports the language this parser handles, e.g. "java", "go".
	Language() string
	// ParseFile parses a single file into a SourceUnit.
	ParseFile(path string, content []byte, fileID types.FileID) (*SourceUnit, error)
}

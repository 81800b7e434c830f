package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/e4c5/dupscan/internal/ast"
)

func unit(fqn string, fs ...ast.Field) *ast.SourceUnit {
	return &ast.SourceUnit{Classes: []ast.ClassInfo{{FQN: fqn, Fields: fs}}}
}

func TestAnalyzeGroupsClassesSharingTwoFields(t *testing.T) {
	units := []*ast.SourceUnit{
		unit("com.acme.Dog",
			ast.Field{Name: "name", Type: "String"},
			ast.Field{Name: "age", Type: "int"},
		),
		unit("com.acme.Cat",
			ast.Field{Name: "name", Type: "String"},
			ast.Field{Name: "age", Type: "int"},
			ast.Field{Name: "indoor", Type: "boolean"},
		),
	}

	groups := Analyze(units)
	assert.Len(t, groups, 1)
	assert.Equal(t, []string{"com.acme.Cat", "com.acme.Dog"}, groups[0].Classes)
	assert.Equal(t, []Signature{{Name: "age", Type: "int"}, {Name: "name", Type: "String"}}, groups[0].DuplicatedFields)
}

func TestAnalyzeIgnoresStaticFields(t *testing.T) {
	units := []*ast.SourceUnit{
		unit("com.acme.A",
			ast.Field{Name: "shared", Type: "int", IsStatic: true},
			ast.Field{Name: "x", Type: "int"},
		),
		unit("com.acme.B",
			ast.Field{Name: "shared", Type: "int", IsStatic: true},
			ast.Field{Name: "x", Type: "int"},
		),
	}

	groups := Analyze(units)
	assert.Empty(t, groups, "only one shared non-static field; below the threshold of two")
}

func TestAnalyzeDoesNotGroupSingletonClasses(t *testing.T) {
	units := []*ast.SourceUnit{
		unit("com.acme.Lonely",
			ast.Field{Name: "a", Type: "int"},
			ast.Field{Name: "b", Type: "int"},
		),
	}

	assert.Empty(t, Analyze(units))
}

func TestAnalyzeDuplicatedFieldsIsIntersectionAcrossAllMembers(t *testing.T) {
	units := []*ast.SourceUnit{
		unit("com.acme.A",
			ast.Field{Name: "x", Type: "int"},
			ast.Field{Name: "y", Type: "int"},
		),
		unit("com.acme.B",
			ast.Field{Name: "x", Type: "int"},
			ast.Field{Name: "y", Type: "int"},
			ast.Field{Name: "z", Type: "int"},
		),
		unit("com.acme.C",
			ast.Field{Name: "x", Type: "int"},
			ast.Field{Name: "y", Type: "int"},
			ast.Field{Name: "w", Type: "int"},
		),
	}

	groups := Analyze(units)
	assert.Len(t, groups, 1)
	assert.Equal(t, []string{"com.acme.A", "com.acme.B", "com.acme.C"}, groups[0].Classes)
	assert.Equal(t, []Signature{{Name: "x", Type: "int"}, {Name: "y", Type: "int"}}, groups[0].DuplicatedFields)
}

func TestLessGroupOrdersByFieldCountThenClassCountThenFQN(t *testing.T) {
	small := Group{Classes: []string{"com.acme.A", "com.acme.B"}, DuplicatedFields: []Signature{{Name: "x"}}}
	large := Group{Classes: []string{"com.acme.C", "com.acme.D"}, DuplicatedFields: []Signature{{Name: "x"}, {Name: "y"}}}
	assert.True(t, lessGroup(small, large), "fewer duplicated fields sorts first")

	biggerGroup := Group{Classes: []string{"com.acme.E", "com.acme.F", "com.acme.G"}, DuplicatedFields: []Signature{{Name: "x"}}}
	assert.True(t, lessGroup(biggerGroup, small), "more classes sorts first when field counts tie")

	alphaFirst := Group{Classes: []string{"com.acme.A", "com.acme.Z"}, DuplicatedFields: []Signature{{Name: "x"}}}
	alphaSecond := Group{Classes: []string{"com.acme.B", "com.acme.Y"}, DuplicatedFields: []Signature{{Name: "x"}}}
	assert.True(t, lessGroup(alphaFirst, alphaSecond), "smallest class FQN sorts first when field and class counts tie")
}

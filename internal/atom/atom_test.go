package atom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormIncludesNameForNamedCategories(t *testing.T) {
	a := Atom{Category: MethodCall, Name: "doWork"}
	assert.Equal(t, "method-call:doWork", a.Form())
}

func TestFormOmitsNameForTagOnlyCategories(t *testing.T) {
	a := Atom{Category: StringLiteral, Name: "ignored"}
	assert.Equal(t, "string-literal", a.Form())
}

func TestEqualComparesNormalizedForm(t *testing.T) {
	a := Atom{Category: Variable, Name: "x"}
	b := Atom{Category: Variable, Name: "y"}
	assert.True(t, Equal(a, b), "both tag-only variable atoms compare equal regardless of name")

	c := Atom{Category: Type, Name: "int"}
	d := Atom{Category: Type, Name: "string"}
	assert.False(t, Equal(c, d), "named categories must match on preserved name too")
}

// Package recommend implements the recommendation generator (C12):
// strategy selection, parameter/argument signature derivation, and
// confidence scoring for a cluster, grounded on the teacher's fuzzy-match
// helper (go-edlib) for name-uniqueness validation.
package recommend

import (
	"context"
	"regexp"
	"sort"

	"github.com/e4c5/dupscan/internal/atom"
	"github.com/e4c5/dupscan/internal/cluster"
	"github.com/e4c5/dupscan/internal/dataflow"
	"github.com/e4c5/dupscan/internal/types"
	"github.com/e4c5/dupscan/internal/variation"
	"github.com/hbollon/go-edlib"
)

// maxCombinedParams is §4.12's budget: parameters plus pass-through
// arguments together, beyond which extraction is no longer a clean
// refactor and falls back to manual review.
const maxCombinedParams = 5

// Strategy is one of §4.12's five recommendation outcomes.
type Strategy string

const (
	ManualReviewRequired     Strategy = "manual-review-required"
	ExtractParameterizedTest Strategy = "extract-parameterized-test"
	ExtractUtilityClass      Strategy = "extract-utility-class"
	ExtractParentClass       Strategy = "extract-parent-class"
	ExtractHelperMethod      Strategy = "extract-helper-method"
)

// MemberInfo is the subset of a cluster member's callable metadata the
// strategy rule needs.
type MemberInfo struct {
	HostClass string
	IsStatic  bool
	IsTest    bool
}

// Parameter is a derived signature parameter: a name bound to one C7
// variation position.
type Parameter struct {
	Name        string
	Type        string
	IsPrimitive bool
	Optional    bool
}

// Recommendation is C12's full output for one cluster.
type Recommendation struct {
	Strategy       Strategy
	ReturnType     string // "void" or the single live-out variable's declared type
	ReturnVariable string // the live-out variable's name, "" when ReturnType is "void"
	Parameters     []Parameter
	Arguments      []variation.Argument
	Confidence     float64
}

// NameSuggester is an optional external AI naming hook. A nil
// NameSuggester is a no-op: Generate always falls back to the
// deterministic naming rule. contextText is the pair's two expression
// forms, joined, for a suggestion prompt; ok is false on any failure
// (timeout, network error, empty response).
type NameSuggester interface {
	Suggest(ctx context.Context, contextText string) (string, bool)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Generate builds the recommendation for one cluster given the
// pairwise C7 analyses and C8 live-out sets of its members.
func Generate(ctx context.Context, c cluster.Cluster, members []MemberInfo, analyses []variation.Analysis, liveOut []dataflow.Sets, suggester NameSuggester) Recommendation {
	strategy := selectStrategy(members, analyses, liveOut)

	params := deriveParameters(ctx, analyses, suggester)
	args := mergeArguments(analyses)
	if strategy != ManualReviewRequired && len(params)+len(args) > maxCombinedParams {
		strategy = ManualReviewRequired
	}
	returnVariable, returnType := deriveReturnType(liveOut)

	confidence := confidenceScore(c, analyses)

	return Recommendation{
		Strategy:       strategy,
		ReturnType:     returnType,
		ReturnVariable: returnVariable,
		Parameters:     params,
		Arguments:      args,
		Confidence:     confidence,
	}
}

// selectStrategy implements §4.12's ordered decision rule.
func selectStrategy(members []MemberInfo, analyses []variation.Analysis, liveOut []dataflow.Sets) Strategy {
	for _, a := range analyses {
		if a.HasControlFlowDifference {
			return ManualReviewRequired
		}
	}

	allTests := len(members) > 0
	allParameterizable := true
	for _, m := range members {
		if !m.IsTest {
			allTests = false
		}
	}
	for _, a := range analyses {
		for _, v := range a.Variations {
			if !isParameterizableCategory(v.Category) {
				allParameterizable = false
			}
		}
	}
	if allTests && allParameterizable {
		return ExtractParameterizedTest
	}

	spansMultipleClasses := false
	allStatic := len(members) > 0
	for i := 1; i < len(members); i++ {
		if members[i].HostClass != members[0].HostClass {
			spansMultipleClasses = true
		}
	}
	for _, m := range members {
		if !m.IsStatic {
			allStatic = false
		}
	}
	if spansMultipleClasses && allStatic {
		return ExtractUtilityClass
	}

	noExtraCapture := true
	for _, s := range liveOut {
		if len(s.CapturedVariables) > 0 {
			noExtraCapture = false
		}
	}
	if spansMultipleClasses && noExtraCapture {
		return ExtractParentClass
	}

	return ExtractHelperMethod
}

// isParameterizableCategory reports whether a variation at this category
// can become a plain value parameter. Operator divergences (e.g. "+" vs
// "-") need a strategy/functional parameter the generator does not
// attempt to synthesize, so they disqualify the parameterized-test
// strategy.
func isParameterizableCategory(c atom.Category) bool {
	return c != atom.Operator
}

// deriveParameters flattens every variation position across the pairwise
// analyses into a deterministic, deduplicated parameter list: required
// before optional, primitives before references, alphabetical within
// groups. The combined parameter/argument budget (§4.12) is enforced by
// the caller, which also knows the pass-through argument count.
func deriveParameters(ctx context.Context, analyses []variation.Analysis, suggester NameSuggester) []Parameter {
	var params []Parameter
	seenNames := map[string]bool{}
	argCounter := 0

	for _, a := range analyses {
		for _, v := range a.Variations {
			name := nameForVariation(ctx, v, suggester, seenNames, &argCounter)
			seenNames[name] = true
			params = append(params, Parameter{
				Name:        name,
				Type:        v.CommonType,
				IsPrimitive: isPrimitiveType(v.CommonType),
			})
		}
	}

	sort.SliceStable(params, func(i, j int) bool {
		if params[i].Optional != params[j].Optional {
			return !params[i].Optional
		}
		if params[i].IsPrimitive != params[j].IsPrimitive {
			return params[i].IsPrimitive
		}
		return params[i].Name < params[j].Name
	})

	return params
}

// nameForVariation picks a name: the first concrete textual value if it
// is a valid identifier, else "argN". An AI suggestion may override, but
// only if it is itself a valid identifier and not a near-duplicate
// (Jaro-Winkler similarity ≥ 0.92) of any name already chosen.
func nameForVariation(ctx context.Context, v variation.Variation, suggester NameSuggester, seen map[string]bool, counter *int) string {
	fallback := func() string {
		if v.ExprA != nil && identifierPattern.MatchString(v.ExprA.Text()) {
			return v.ExprA.Text()
		}
		*counter++
		return argName(*counter)
	}
	name := fallback()

	if suggester == nil {
		return name
	}
	suggested, ok := suggester.Suggest(ctx, contextTextOf(v))
	if !ok || !identifierPattern.MatchString(suggested) {
		return name
	}
	if isNearDuplicate(suggested, seen) {
		return name
	}
	return suggested
}

func contextTextOf(v variation.Variation) string {
	a, b := "", ""
	if v.ExprA != nil {
		a = v.ExprA.Text()
	}
	if v.ExprB != nil {
		b = v.ExprB.Text()
	}
	return a + " vs " + b
}

func argName(n int) string {
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return "arg" + string(digits)
}

// isNearDuplicate rejects a candidate name that is an exact match or
// Jaro-Winkler near-match (≥ 0.92) of any already-chosen name, per the
// uniqueness validation rule in §4.12.
func isNearDuplicate(candidate string, existing map[string]bool) bool {
	for name := range existing {
		if name == candidate {
			return true
		}
		score, err := edlib.StringsSimilarity(candidate, name, edlib.JaroWinkler)
		if err == nil && float64(score) >= 0.92 {
			return true
		}
	}
	return false
}

var primitiveTypes = map[string]bool{
	"int": true, "long": true, "double": true, "float": true, "boolean": true,
	"byte": true, "short": true, "char": true, "bool": true, "float64": true,
	"float32": true, "int64": true, "int32": true, "rune": true,
}

func isPrimitiveType(t string) bool { return primitiveTypes[t] }

// mergeArguments deduplicates the pass-through variable references
// collected across every pairwise analysis in the cluster.
func mergeArguments(analyses []variation.Analysis) []variation.Argument {
	seen := map[string]bool{}
	var out []variation.Argument
	for _, a := range analyses {
		for _, arg := range append(append([]variation.Argument{}, a.ArgumentsA...), a.ArgumentsB...) {
			if !seen[arg.Name] {
				seen[arg.Name] = true
				out = append(out, arg)
			}
		}
	}
	return out
}

// deriveReturnType implements §4.12's rule: a single live-out name across
// every member becomes the typed return, resolved via C8's DeclaredTypes;
// otherwise void.
func deriveReturnType(liveOut []dataflow.Sets) (name, returnType string) {
	names := map[string]bool{}
	for _, s := range liveOut {
		for n := range s.LiveOut {
			names[n] = true
		}
	}
	if len(names) != 1 {
		return "", "void"
	}
	for n := range names {
		name = n
	}
	for _, s := range liveOut {
		if t, ok := s.DeclaredTypes[name]; ok && t != "" {
			return name, t
		}
	}
	return name, types.UnknownType
}

// confidenceScore implements §4.12's product formula.
func confidenceScore(c cluster.Cluster, analyses []variation.Analysis) float64 {
	controlFlowPenalty := 0.0
	typeCompatible := true
	for _, a := range analyses {
		if a.HasControlFlowDifference {
			controlFlowPenalty = 1.0
		}
		for _, v := range a.Variations {
			if v.CommonType == "unknown" {
				typeCompatible = false
			}
		}
	}

	typeFactor := 1.0
	if !typeCompatible {
		typeFactor = 0.7
	}

	sizeBonus := float64(lineCount(c)) / 10
	if sizeBonus > 1 {
		sizeBonus = 1
	}

	return (1 - controlFlowPenalty) * typeFactor * sizeBonus
}

func lineCount(c cluster.Cluster) int {
	return c.Primary.Range.End.Line - c.Primary.Range.Start.Line + 1
}

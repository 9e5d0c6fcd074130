package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/incimine/internal/analysis"
	"github.com/roach88/incimine/internal/model"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Index    int
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion[%d] %s failed\n  Expected: %s\n  Actual: %s", e.Index, e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions evaluates all assertions against res.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(res *analysis.Result, assertions []Assertion) []string {
	var errors []string

	itemsets := make(map[string]model.Itemset, len(res.Itemsets))
	for _, s := range res.Itemsets {
		itemsets[s.Key()] = s
	}
	rules := make(map[string]model.Rule, len(res.Rules))
	for _, r := range res.Rules {
		rules[r.Key()] = r
	}

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertItemsetCount:
			err = assertCount(i, a, len(res.Itemsets))
		case AssertRuleCount:
			err = assertCount(i, a, len(res.Rules))
		case AssertItemsetSupport:
			err = assertItemsetSupport(i, a, itemsets)
		case AssertItemsetAbsent:
			if s, ok := itemsets[itemsKey(a.Items)]; ok {
				err = &AssertionError{Index: i, Type: a.Type,
					Expected: fmt.Sprintf("{%s} not frequent", strings.Join(a.Items, ", ")),
					Actual:   fmt.Sprintf("frequent with support %g", s.Support)}
			}
		case AssertRuleMetrics:
			err = assertRuleMetrics(i, a, rules)
		case AssertRuleAbsent:
			ref := RuleRef{Antecedent: a.Antecedent, Consequent: a.Consequent}
			if r, ok := rules[ref.key()]; ok {
				err = &AssertionError{Index: i, Type: a.Type,
					Expected: fmt.Sprintf("%s not retained", ref),
					Actual:   fmt.Sprintf("retained with confidence %g, lift %g", r.Confidence, r.Lift)}
			}
		case AssertTopOrder:
			err = assertTopOrder(i, a, res.Top)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func assertCount(i int, a Assertion, got int) error {
	if got != *a.Count {
		return &AssertionError{Index: i, Type: a.Type,
			Expected: fmt.Sprintf("%d", *a.Count),
			Actual:   fmt.Sprintf("%d", got)}
	}
	return nil
}

func assertItemsetSupport(i int, a Assertion, itemsets map[string]model.Itemset) error {
	name := "{" + strings.Join(a.Items, ", ") + "}"
	s, ok := itemsets[itemsKey(a.Items)]
	if !ok {
		return &AssertionError{Index: i, Type: a.Type, Expected: name + " frequent", Actual: "not frequent"}
	}
	if a.Support != nil && !approxEqual(s.Support, *a.Support, tolerance(a)) {
		return &AssertionError{Index: i, Type: a.Type,
			Expected: fmt.Sprintf("%s support %g", name, *a.Support),
			Actual:   fmt.Sprintf("%g", s.Support)}
	}
	if a.Count != nil && s.Count != int64(*a.Count) {
		return &AssertionError{Index: i, Type: a.Type,
			Expected: fmt.Sprintf("%s count %d", name, *a.Count),
			Actual:   fmt.Sprintf("%d", s.Count)}
	}
	return nil
}

func assertRuleMetrics(i int, a Assertion, rules map[string]model.Rule) error {
	ref := RuleRef{Antecedent: a.Antecedent, Consequent: a.Consequent}
	r, ok := rules[ref.key()]
	if !ok {
		return &AssertionError{Index: i, Type: a.Type, Expected: ref.String() + " retained", Actual: "not retained"}
	}

	tol := tolerance(a)
	checks := []struct {
		name string
		want *float64
		got  float64
	}{
		{"support", a.Support, r.Support},
		{"confidence", a.Confidence, r.Confidence},
		{"lift", a.Lift, r.Lift},
	}
	for _, c := range checks {
		if c.want != nil && !approxEqual(c.got, *c.want, tol) {
			return &AssertionError{Index: i, Type: a.Type,
				Expected: fmt.Sprintf("%s %s %g (±%g)", ref, c.name, *c.want, tol),
				Actual:   fmt.Sprintf("%g", c.got)}
		}
	}
	if a.Count != nil && r.Count != int64(*a.Count) {
		return &AssertionError{Index: i, Type: a.Type,
			Expected: fmt.Sprintf("%s count %d", ref, *a.Count),
			Actual:   fmt.Sprintf("%d", r.Count)}
	}
	return nil
}

func assertTopOrder(i int, a Assertion, top []model.Rule) error {
	want := make([]string, len(a.Rules))
	for j, ref := range a.Rules {
		want[j] = ref.String()
	}
	got := make([]string, len(top))
	for j, r := range top {
		got[j] = r.String()
	}

	if len(want) != len(got) {
		return &AssertionError{Index: i, Type: a.Type,
			Expected: fmt.Sprintf("%d rules [%s]", len(want), strings.Join(want, "; ")),
			Actual:   fmt.Sprintf("%d rules [%s]", len(got), strings.Join(got, "; "))}
	}
	for j := range want {
		if a.Rules[j].key() != top[j].Key() {
			return &AssertionError{Index: i, Type: a.Type,
				Expected: fmt.Sprintf("rank %d is %s", j+1, want[j]),
				Actual:   got[j]}
		}
	}
	return nil
}

// itemsKey builds the canonical key for labels given in any order.
func itemsKey(labels []string) string {
	items := make([]model.Item, len(labels))
	for i, l := range labels {
		items[i] = model.Item(l)
	}
	return model.ItemsKey(model.SortItems(items))
}

func (r RuleRef) key() string {
	return itemsKey(r.Antecedent) + "=>" + itemsKey(r.Consequent)
}

// String renders "A, B => C".
func (r RuleRef) String() string {
	return strings.Join(r.Antecedent, ", ") + " => " + strings.Join(r.Consequent, ", ")
}

func tolerance(a Assertion) float64 {
	if a.Tolerance > 0 {
		return a.Tolerance
	}
	return DefaultTolerance
}

func approxEqual(got, want, tol float64) bool {
	if math.IsInf(want, 0) {
		return got == want
	}
	return math.Abs(got-want) <= tol
}

// Package harness provides scenario-driven conformance testing for the
// mining pipeline.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	thresholds:
//	  min_support: 0.4
//	  min_confidence: 0.6
//	  min_lift: 0
//	  top_n: 3
//	transactions:
//	  - [A, B]
//	  - [A, B, C]
//	assertions:
//	  - type: itemset_support
//	    items: [A, B]
//	    support: 0.6
//	  - type: rule_metrics
//	    antecedent: [A, B]
//	    consequent: [C]
//	    confidence: 0.666667
//	    tolerance: 0.000001
//
// Thresholds left out of the file take the analysis defaults.
//
// # Assertion Types
//
//   - itemset_count: exact number of frequent itemsets
//   - rule_count: exact number of retained rules
//   - itemset_support: an itemset is frequent, optionally with support/count
//   - itemset_absent: an itemset is not frequent
//   - rule_metrics: a rule is retained, optionally with metric values
//   - rule_absent: a rule is not retained
//   - top_order: the top-N rules, in rank order
//
// A scenario may instead set expect_error to a substring of the
// configuration error the analysis must fail with.
//
// # Deterministic Testing
//
// Every run uses a fixed run ID derived from the scenario name, so the same
// scenario always produces the same result and golden snapshot.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/basket.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness

package scoringdomain

import (
	"fmt"
	"math"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
)

// Mode selects how a total is derived from a tree.
type Mode string

const (
	// ModeDeduction starts from the ceiling and subtracts what each criterion
	// is missing plus every demerit.
	ModeDeduction Mode = "deduction"
	// ModeAdditive sums earned points and subtracts demerits.
	ModeAdditive Mode = "additive"
)

// Classification is the tier label derived from a total.
type Classification string

// Ruleset configures one engine instance.
type Ruleset struct {
	Mode Mode
	// MaxScore is the deduction ceiling. Zero means the catalog's maximum
	// possible score.
	MaxScore  float64
	BaseScore float64
	// Tier3Threshold must be >= Tier2Threshold.
	Tier3Threshold float64
	Tier2Threshold float64
	Tier1Label     Classification
	Tier2Label     Classification
	Tier3Label     Classification
}

// DefaultRuleset returns the deduction ruleset used when nothing is configured.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Mode:           ModeDeduction,
		Tier3Threshold: 1100,
		Tier2Threshold: 850,
		Tier1Label:     "bronze",
		Tier2Label:     "silver",
		Tier3Label:     "gold",
	}
}

// Validate rejects rulesets the engine cannot apply.
func (r Ruleset) Validate() error {
	switch r.Mode {
	case ModeDeduction, ModeAdditive:
	default:
		return fmt.Errorf("unknown scoring mode %q", r.Mode)
	}
	if r.MaxScore < 0 || r.BaseScore < 0 {
		return fmt.Errorf("max and base score must not be negative")
	}
	if r.Tier3Threshold < r.Tier2Threshold {
		return fmt.Errorf("tier thresholds must ascend: tier2=%v tier3=%v", r.Tier2Threshold, r.Tier3Threshold)
	}
	return nil
}

// Result is the derived state persisted alongside a tree.
type Result struct {
	TotalScore     float64        `json:"totalScore"`
	Classification Classification `json:"classification"`
}

// CategoryBreakdown summarizes one category of a tree.
type CategoryBreakdown struct {
	Category string
	Kind     criteriadomain.Kind
	Earned   float64
	Max      float64
	Penalty  float64
}

// Engine computes totals. It holds no state besides its ruleset and is safe
// for concurrent use.
type Engine struct {
	ruleset Ruleset
}

// NewEngine builds an engine, filling unset labels and mode from the defaults.
func NewEngine(r Ruleset) *Engine {
	def := DefaultRuleset()
	if r.Mode == "" {
		r.Mode = def.Mode
	}
	if r.Tier1Label == "" {
		r.Tier1Label = def.Tier1Label
	}
	if r.Tier2Label == "" {
		r.Tier2Label = def.Tier2Label
	}
	if r.Tier3Label == "" {
		r.Tier3Label = def.Tier3Label
	}
	return &Engine{ruleset: r}
}

// Ruleset returns the active ruleset.
func (e *Engine) Ruleset() Ruleset { return e.ruleset }

// Compute derives the total and classification of tree. A nil catalog means
// the built-in one.
func (e *Engine) Compute(tree Tree, catalog *criteriadomain.Catalog) Result {
	if catalog == nil {
		catalog = criteriadomain.Default()
	}

	var total float64
	switch e.ruleset.Mode {
	case ModeAdditive:
		total = e.additiveTotal(tree, catalog)
	default:
		total = e.deductionTotal(tree, catalog)
	}
	return Result{TotalScore: total, Classification: e.Classify(total)}
}

func (e *Engine) deductionTotal(tree Tree, catalog *criteriadomain.Catalog) float64 {
	var penalty float64
	for _, c := range catalog.Criteria() {
		if c.IsDemerit() {
			continue
		}
		earned, _ := tree.Get(c.Path)
		penalty += Penalty(c, earned)
	}
	penalty += demeritTotal(tree, catalog)
	return math.Max(0, e.ceiling(catalog)-penalty)
}

func (e *Engine) additiveTotal(tree Tree, catalog *criteriadomain.Catalog) float64 {
	var earned float64
	for _, lv := range tree.Leaves() {
		cat, ok := catalog.Categories[lv.Path.Category]
		if ok && cat.Kind == criteriadomain.KindAdditive {
			earned += lv.Value
		}
	}
	return math.Max(0, earned-demeritTotal(tree, catalog))
}

func demeritTotal(tree Tree, catalog *criteriadomain.Catalog) float64 {
	var sum float64
	for _, lv := range tree.Leaves() {
		if catalog.IsDemerit(lv.Path.Category) {
			sum += math.Abs(lv.Value)
		}
	}
	return sum
}

func (e *Engine) ceiling(catalog *criteriadomain.Catalog) float64 {
	if e.ruleset.MaxScore > 0 {
		return e.ruleset.MaxScore
	}
	return e.MaxPossibleScore(catalog)
}

// Penalty is what one additive criterion costs in deduction mode.
func Penalty(c criteriadomain.Criterion, earned float64) float64 {
	switch {
	case earned >= c.Max:
		return 0
	case c.Partial > 0 && earned == c.Partial:
		return c.Max - c.Partial
	case earned <= 0:
		return c.Max
	default:
		return c.Max - earned
	}
}

// Classify maps a total onto a tier label.
func (e *Engine) Classify(total float64) Classification {
	switch {
	case total >= e.ruleset.Tier3Threshold:
		return e.ruleset.Tier3Label
	case total >= e.ruleset.Tier2Threshold:
		return e.ruleset.Tier2Label
	default:
		return e.ruleset.Tier1Label
	}
}

// MaxPossibleScore is the base score plus every additive maximum.
func (e *Engine) MaxPossibleScore(catalog *criteriadomain.Catalog) float64 {
	if catalog == nil {
		catalog = criteriadomain.Default()
	}
	sum := e.ruleset.BaseScore
	for _, c := range catalog.Criteria() {
		if !c.IsDemerit() {
			sum += c.Max
		}
	}
	return sum
}

// Breakdown reports earned points and penalties per category, sorted the
// same way the catalog criteria are.
func (e *Engine) Breakdown(tree Tree, catalog *criteriadomain.Catalog) []CategoryBreakdown {
	if catalog == nil {
		catalog = criteriadomain.Default()
	}
	index := map[string]int{}
	var out []CategoryBreakdown
	for _, c := range catalog.Criteria() {
		i, ok := index[c.Category]
		if !ok {
			i = len(out)
			index[c.Category] = i
			out = append(out, CategoryBreakdown{Category: c.Category, Kind: c.Kind})
		}
		v, _ := tree.Get(c.Path)
		if c.IsDemerit() {
			out[i].Penalty += math.Abs(v)
			continue
		}
		out[i].Earned += v
		out[i].Max += c.Max
		out[i].Penalty += Penalty(c, v)
	}
	return out
}

package scoringdomain

import (
	"testing"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallCatalog() *criteriadomain.Catalog {
	return &criteriadomain.Catalog{Categories: map[string]criteriadomain.Category{
		"participation": {Kind: criteriadomain.KindAdditive, Items: map[string]criteriadomain.Item{
			"opening": {Bounds: criteriadomain.Bounds{Max: 100, Partial: 30}},
			"closing": {Bounds: criteriadomain.Bounds{Max: 50}},
		}},
		"demerits": {Kind: criteriadomain.KindDemerit, Items: map[string]criteriadomain.Item{
			"noise": {Bounds: criteriadomain.Bounds{Penalty: 20}},
		}},
	}}
}

func TestPenalty(t *testing.T) {
	opening := criteriadomain.Criterion{Max: 100, Partial: 30}
	closing := criteriadomain.Criterion{Max: 50}

	tests := []struct {
		name   string
		crit   criteriadomain.Criterion
		earned float64
		want   float64
	}{
		{name: "full credit", crit: opening, earned: 100, want: 0},
		{name: "partial credit", crit: opening, earned: 30, want: 70},
		{name: "zero", crit: opening, earned: 0, want: 100},
		{name: "other value", crit: opening, earned: 45, want: 55},
		{name: "above max clamps", crit: opening, earned: 120, want: 0},
		{name: "no partial defined", crit: closing, earned: 0, want: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Penalty(tt.crit, tt.earned))
		})
	}
}

// Scenario: opening {max:100, partial:30} earned 30 costs 70.
func TestDeductionPartialCredit(t *testing.T) {
	engine := NewEngine(Ruleset{Mode: ModeDeduction, MaxScore: 1000})
	tree := Tree{}
	tree.Set(path("participation", "opening"), 30)
	tree.Set(path("participation", "closing"), 50)

	res := engine.Compute(tree, smallCatalog())
	assert.Equal(t, 930.0, res.TotalScore)
}

func TestDeductionModes(t *testing.T) {
	catalog := smallCatalog()

	tests := []struct {
		name    string
		ruleset Ruleset
		leaves  map[criteriadomain.Path]float64
		want    float64
	}{
		{
			name:    "empty tree costs every max",
			ruleset: Ruleset{Mode: ModeDeduction, MaxScore: 1000},
			want:    850,
		},
		{
			name:    "demerits subtract directly",
			ruleset: Ruleset{Mode: ModeDeduction, MaxScore: 1000},
			leaves: map[criteriadomain.Path]float64{
				path("participation", "opening"): 100,
				path("participation", "closing"): 50,
				path("demerits", "noise"):        40,
			},
			want: 960,
		},
		{
			name:    "floor at zero",
			ruleset: Ruleset{Mode: ModeDeduction, MaxScore: 100},
			leaves:  map[criteriadomain.Path]float64{path("demerits", "noise"): 400},
			want:    0,
		},
		{
			name:    "ceiling defaults to max possible",
			ruleset: Ruleset{Mode: ModeDeduction, BaseScore: 10},
			leaves: map[criteriadomain.Path]float64{
				path("participation", "opening"): 100,
				path("participation", "closing"): 50,
			},
			want: 160,
		},
		{
			name:    "additive sums and subtracts demerits",
			ruleset: Ruleset{Mode: ModeAdditive},
			leaves: map[criteriadomain.Path]float64{
				path("participation", "opening"): 30,
				path("participation", "closing"): 50,
				path("demerits", "noise"):        20,
			},
			want: 60,
		},
		{
			name:    "additive floors at zero",
			ruleset: Ruleset{Mode: ModeAdditive},
			leaves:  map[criteriadomain.Path]float64{path("demerits", "noise"): 20},
			want:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := Tree{}
			for p, v := range tt.leaves {
				tree.Set(p, v)
			}
			res := NewEngine(tt.ruleset).Compute(tree, catalog)
			assert.Equal(t, tt.want, res.TotalScore)
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	engine := NewEngine(DefaultRuleset())
	catalog := criteriadomain.Default()
	tree := MaxTree(catalog)
	tree.Set(path("events", "carousel", "knots"), 15)
	tree.Set(path("demerits", "noise"), 40)

	first := engine.Compute(tree, catalog)
	second := engine.Compute(tree.Clone(), catalog)
	assert.Equal(t, first, second)
}

func TestComputeNilCatalogUsesDefault(t *testing.T) {
	engine := NewEngine(DefaultRuleset())
	tree := MaxTree(criteriadomain.Default())
	assert.Equal(t, engine.Compute(tree, criteriadomain.Default()), engine.Compute(tree, nil))
}

func TestClassify(t *testing.T) {
	engine := NewEngine(Ruleset{Tier3Threshold: 900, Tier2Threshold: 600})

	assert.Equal(t, Classification("gold"), engine.Classify(900))
	assert.Equal(t, Classification("silver"), engine.Classify(899))
	assert.Equal(t, Classification("silver"), engine.Classify(600))
	assert.Equal(t, Classification("bronze"), engine.Classify(599.5))
}

func TestMaxPossibleScore(t *testing.T) {
	engine := NewEngine(Ruleset{BaseScore: 25})
	assert.Equal(t, 175.0, engine.MaxPossibleScore(smallCatalog()))

	full := NewEngine(DefaultRuleset())
	catalog := criteriadomain.Default()
	res := full.Compute(MaxTree(catalog), catalog)
	assert.Equal(t, full.MaxPossibleScore(catalog), res.TotalScore)
	assert.Equal(t, Classification("gold"), res.Classification)
}

func TestRulesetValidate(t *testing.T) {
	require.NoError(t, DefaultRuleset().Validate())
	assert.Error(t, Ruleset{Mode: "weighted"}.Validate())
	assert.Error(t, Ruleset{Mode: ModeDeduction, Tier3Threshold: 1, Tier2Threshold: 2}.Validate())
	assert.Error(t, Ruleset{Mode: ModeAdditive, MaxScore: -1}.Validate())
}

func TestBreakdown(t *testing.T) {
	engine := NewEngine(DefaultRuleset())
	tree := Tree{}
	tree.Set(path("participation", "opening"), 30)
	tree.Set(path("demerits", "noise"), 40)

	got := engine.Breakdown(tree, smallCatalog())
	require.Len(t, got, 2)

	byCat := map[string]CategoryBreakdown{}
	for _, b := range got {
		byCat[b.Category] = b
	}
	assert.Equal(t, 30.0, byCat["participation"].Earned)
	assert.Equal(t, 150.0, byCat["participation"].Max)
	assert.Equal(t, 120.0, byCat["participation"].Penalty)
	assert.Equal(t, 40.0, byCat["demerits"].Penalty)
}

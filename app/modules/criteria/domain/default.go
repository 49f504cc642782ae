package criteriadomain

// Category names used by the built-in catalog.
const (
	CategoryPrerequisites = "prerequisites"
	CategoryParticipation = "participation"
	CategoryCampSetup     = "campSetup"
	CategoryUniform       = "uniform"
	CategoryEvents        = "events"
	CategoryBonus         = "bonus"
	CategoryDemerits      = "demerits"
)

func leaf(max, partial float64, desc string) Item {
	return Item{Bounds: Bounds{Max: max, Partial: partial, Description: desc}}
}

func demerit(penalty float64, desc string) Item {
	return Item{Bounds: Bounds{Penalty: penalty, Description: desc}}
}

// Default returns a fresh copy of the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Version: 0,
		Categories: map[string]Category{
			CategoryPrerequisites: {
				Kind:        KindAdditive,
				Description: "Paperwork completed before arrival",
				Items: map[string]Item{
					"registration":         leaf(50, 0, "Registration submitted on time"),
					"directorMeeting":      leaf(40, 20, "Club director attended the pre-camp meeting"),
					"insurance":            leaf(30, 0, "Insurance forms for every member"),
					"medicalAuthorization": leaf(30, 15, "Medical authorizations on file"),
				},
			},
			CategoryParticipation: {
				Kind:        KindAdditive,
				Description: "Attendance at camp-wide programs",
				Items: map[string]Item{
					"opening":         leaf(100, 30, "Opening ceremony"),
					"closing":         leaf(100, 30, "Closing ceremony"),
					"dailyDevotional": leaf(60, 30, "Morning devotionals"),
					"eveningProgram":  leaf(60, 30, "Evening programs"),
				},
			},
			CategoryCampSetup: {
				Kind:        KindAdditive,
				Description: "Campsite inspection",
				Items: map[string]Item{
					"tents":    leaf(80, 40, "Tents pitched and aligned"),
					"kitchen":  leaf(60, 30, "Kitchen area clean and organized"),
					"entrance": leaf(50, 25, "Decorated campsite entrance"),
					"flags":    leaf(40, 20, "Flags raised and displayed"),
				},
			},
			CategoryUniform: {
				Kind:        KindAdditive,
				Description: "Uniform inspection",
				Items: map[string]Item{
					"inspection": leaf(120, 60, "Full uniform inspection"),
					"badges":     leaf(40, 20, "Badges and sashes"),
				},
			},
			CategoryEvents: {
				Kind:        KindAdditive,
				Description: "Competitive events",
				Items: map[string]Item{
					"twelveHour": leaf(100, 50, "Twelve hour challenge"),
					"marching":   leaf(150, 75, "Marching drill"),
					"carousel": {
						Bounds: Bounds{Description: "Skill stations rotation"},
						SubItems: map[string]Bounds{
							"bible":        {Max: 30, Partial: 15, Description: "Bible knowledge station"},
							"knots":        {Max: 30, Partial: 15, Description: "Knot tying station"},
							"firstAid":     {Max: 30, Partial: 15, Description: "First aid station"},
							"orienteering": {Max: 30, Partial: 15, Description: "Orienteering station"},
						},
					},
				},
			},
			CategoryBonus: {
				Kind:        KindAdditive,
				Description: "Extra credit",
				Items: map[string]Item{
					"communityService": leaf(50, 25, "Community service project"),
					"earlyArrival":     leaf(30, 0, "Arrived before the check-in window"),
				},
			},
			CategoryDemerits: {
				Kind:        KindDemerit,
				Description: "Per-occurrence penalties",
				Items: map[string]Item{
					"lateArrival": demerit(10, "Late to a scheduled program"),
					"noise":       demerit(20, "Noise after lights out"),
					"curfew":      demerit(30, "Members out after curfew"),
					"litter":      demerit(10, "Litter left at the campsite"),
				},
			},
		},
	}
}

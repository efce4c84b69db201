package dashboard

// CountRow is one line of a breakdown table.
type CountRow struct {
	Label string
	Count int64
}

// The breakdown tables and alert feed have no backend endpoint yet and are
// rendered from fixed reference data.
var (
	tariffRows = []CountRow{
		{"Basic Plan", 4825},
		{"Home Plan", 5342},
		{"Partner Plan", 1203},
		{"Business Plan", 3847},
		{"Municipal Plan", 2156},
	}
	activityRows = []CountRow{
		{"General Services", 335},
		{"Tech Solutions", 32},
		{"Construction", 14},
		{"Manufacturing", 3},
		{"Government", 33},
	}
	agencyRows = []CountRow{
		{"Branch Alpha", 169},
		{"Branch Beta", 9},
		{"Branch Gamma", 1},
		{"Branch Delta", 8},
		{"Branch Epsilon", 139},
	}
	recentAlerts = []string{
		"High usage detected in North District",
		"Payment overdue: User #1023",
		"System maintenance scheduled for 7/20",
		"New alert: Unusual activity in West District",
	}
)

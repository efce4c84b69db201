package analytics

// Overview holds the headline site metrics.
type Overview struct {
	TotalUsers         int64
	ActiveUsers        int64
	PageViews          int64
	BounceRate         float64
	AvgSessionDuration string
	ConversionRate     float64
}

// Share is a named percentage.
type Share struct {
	Name    string
	Percent float64
	Color   string
}

// PageStat is traffic for one page.
type PageStat struct {
	Page        string
	Views       int64
	UniqueViews int64
	BounceRate  float64
}

// DayStat is one day of the weekly series.
type DayStat struct {
	Day       string
	Users     int64
	Sessions  int64
	PageViews int64
}

// CountryStat is visitors per country.
type CountryStat struct {
	Country string
	Users   int64
	Percent float64
}

// Dataset is the full analytics data set.
type Dataset struct {
	Overview      Overview
	Traffic       []Share
	Devices       []Share
	TopPages      []PageStat
	RealtimeUsers int
	Weekly        []DayStat
	Countries     []CountryStat
}

// Sample returns the fixed analytics data set. It is the same for every range.
func Sample() Dataset {
	return Dataset{
		Overview: Overview{
			TotalUsers:         28450,
			ActiveUsers:        8920,
			PageViews:          89340,
			BounceRate:         28.5,
			AvgSessionDuration: "4m 15s",
			ConversionRate:     6.2,
		},
		Traffic: []Share{
			{"Organic Search", 42, "#3b82f6"},
			{"Direct", 28, "#10b981"},
			{"Social Media", 18, "#8b5cf6"},
			{"Referral", 7, "#f59e0b"},
			{"Email", 3, "#ef4444"},
			{"Paid Ads", 2, "#6366f1"},
		},
		Devices: []Share{
			{"Desktop", 48, "#3b82f6"},
			{"Mobile", 42, "#10b981"},
			{"Tablet", 10, "#8b5cf6"},
		},
		TopPages: []PageStat{
			{"/home", 15680, 12340, 22.4},
			{"/courses", 12450, 9870, 26.8},
			{"/about", 8920, 7450, 31.2},
			{"/contact", 6780, 5890, 35.6},
			{"/blog", 5430, 4680, 28.9},
		},
		RealtimeUsers: 156,
		Weekly: []DayStat{
			{"Mon", 1850, 2340, 5680},
			{"Tue", 2120, 2890, 6890},
			{"Wed", 2450, 3120, 7890},
			{"Thu", 2280, 2980, 7340},
			{"Fri", 2890, 3680, 8920},
			{"Sat", 2340, 3120, 7680},
			{"Sun", 1980, 2560, 6240},
		},
		Countries: []CountryStat{
			{"India", 11380, 40.0},
			{"United States", 5690, 20.0},
			{"United Kingdom", 2845, 10.0},
			{"Canada", 2276, 8.0},
			{"Australia", 1707, 6.0},
			{"Others", 4552, 16.0},
		},
	}
}

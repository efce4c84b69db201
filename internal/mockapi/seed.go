package mockapi

import (
	"fmt"
	"strconv"

	"github.com/gridpulse/console/internal/gateway"
)

var seedRoles = []string{"Super-Admin", "Admin", "Sub-Admin", "Analyst", "Inspector"}

var seedPermissions = []string{"home_dashboard", "analytics_dashboard", "user_dashboard"}

var seedRolePermissions = map[string][]string{
	"Super-Admin": {"home_dashboard", "analytics_dashboard", "user_dashboard"},
	"Admin":       {"home_dashboard", "analytics_dashboard", "user_dashboard"},
	"Sub-Admin":   {"home_dashboard", "user_dashboard"},
	"Analyst":     {"home_dashboard", "analytics_dashboard"},
	"Inspector":   {"home_dashboard", "user_dashboard"},
}

type seedAccount struct {
	username, email, password, fullName, role string
}

// Credentials of the super-admin every fresh store accepts.
const (
	SuperAdminUsername = "admin"
	SuperAdminPassword = "admin123"
)

var seedAccounts = []seedAccount{
	{SuperAdminUsername, "admin@gridpulse.local", SuperAdminPassword, "System Administrator", "Super-Admin"},
	{"arjun2024", "arjun2024@example.com", "Arjun@2024!", "Arjun Mehra", "Admin"},
	{"ishaana99", "ishaana99@example.com", "Ishaana@99!", "Ishaana Singh", "Analyst"},
	{"pranav88", "pranav88@example.com", "Pranav@88!", "Pranav Reddy", "Inspector"},
}

var months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

var (
	statuses = []string{"active", "inactive"}
	regions  = []string{"North", "South", "East", "West"}
	segments = []string{"Residential", "Commercial", "Industrial"}
	phases   = []string{"1-phase", "3-phase"}
)

// seedConsumers builds analytics records 1..5 with deterministic histories.
func seedConsumers() map[string]gateway.Consumer {
	out := make(map[string]gateway.Consumer, 5)
	for i := 1; i <= 5; i++ {
		c := gateway.Consumer{
			Name:      fmt.Sprintf("User %d", i),
			Number:    strconv.Itoa(i),
			Email:     fmt.Sprintf("user%d@example.com", i),
			Status:    statuses[i%len(statuses)],
			Region:    regions[i%len(regions)],
			Segment:   segments[i%len(segments)],
			Phase:     phases[i%len(phases)],
			CreatedAt: "2024-01-01",
			RecentActivity: []string{
				"2024-07-01: Paid bill",
				"2024-06-25: Usage alert triggered",
				"2024-06-15: Updated profile",
				"2024-06-01: Paid bill",
			},
		}
		for m, month := range months {
			c.UsageHistory = append(c.UsageHistory, gateway.UsagePoint{Month: month, Usage: float64(150 + (i*37+m*53)%151)})
			c.PaymentHistory = append(c.PaymentHistory, gateway.PaymentPoint{Month: month, Paid: (i + m) % 2})
			c.AlertHistory = append(c.AlertHistory, gateway.AlertPoint{Month: month, Alerts: (i * (m + 1)) % 3})
		}
		out[c.Number] = c
	}
	return out
}

func seedStats() gateway.DashboardStats {
	return gateway.DashboardStats{TotalUsers: 10000, ActiveUsers: 2405, InactiveUsers: 3628, AlertCases: 3958}
}

func seedCharts() gateway.DashboardCharts {
	return gateway.DashboardCharts{
		Regions: []gateway.ChartItem{
			{Name: "North District", Value: 65, Color: "#10B981"},
			{Name: "South District", Value: 8, Color: "#F59E0B"},
			{Name: "East District", Value: 6, Color: "#3B82F6"},
			{Name: "West District", Value: 4, Color: "#EF4444"},
			{Name: "Central District", Value: 3, Color: "#8B5CF6"},
			{Name: "Metro Area", Value: 5, Color: "#06B6D4"},
			{Name: "Suburban Zone", Value: 4, Color: "#EAB308"},
			{Name: "Industrial Zone", Value: 3, Color: "#78716C"},
			{Name: "Commercial Zone", Value: 2, Color: "#EC4899"},
		},
		Tension: []gateway.ChartItem{
			{Name: "TYPE A (120V)", Value: 45, Color: "#3B82F6"},
			{Name: "TYPE B (240V)", Value: 15, Color: "#EF4444"},
			{Name: "TYPE C (480V)", Value: 8, Color: "#F59E0B"},
			{Name: "TYPE D (600V)", Value: 25, Color: "#10B981"},
			{Name: "TYPE E (1000V)", Value: 7, Color: "#8B5CF6"},
		},
		ReadingMethods: []gateway.ChartItem{
			{Name: "Manual", Value: 318, Color: "#3B82F6"},
			{Name: "Automatic", Value: 571, Color: "#EF4444"},
			{Name: "Digital", Value: 9111, Color: "#F59E0B"},
		},
		Segments: []gateway.SegmentShare{
			{Name: "Standard", Percentage: 61.47, Color: "#fb923c"},
			{Name: "Professional", Percentage: 9.86, Color: "#f59e42"},
			{Name: "Personal", Percentage: 12.78, Color: "#f59e42"},
			{Name: "Personal Plus", Percentage: 2.56, Color: "#d1d5db"},
			{Name: "Enterprise", Percentage: 7.13, Color: "#f59e42"},
			{Name: "Premium", Percentage: 6.2, Color: "#f59e42"},
		},
		Phase: gateway.PhaseSplit{SinglePhase: 82.82, ThreePhase: 17.18},
	}
}

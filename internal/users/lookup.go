package users

import (
	"html/template"

	"github.com/gridpulse/console/internal/charts"
	"github.com/gridpulse/console/internal/gateway"
)

// NotFoundMessage is shown for every failed lookup, whatever the cause.
const NotFoundMessage = "No user found for that number."

// QuickStats summarise a consumer's history.
type QuickStats struct {
	UsageKWh    float64
	BillsPaid   int
	LastPayment string
	Alerts      int
}

// Result is a successful lookup ready for display.
type Result struct {
	Consumer     gateway.Consumer
	Stats        QuickStats
	UsageChart   template.HTML
	PaymentChart template.HTML
	AlertChart   template.HTML
}

func summarize(c gateway.Consumer) QuickStats {
	stats := QuickStats{LastPayment: "-"}
	for _, p := range c.UsageHistory {
		stats.UsageKWh += p.Usage
	}
	for _, p := range c.PaymentHistory {
		if p.Paid != 0 {
			stats.BillsPaid++
		}
	}
	if n := len(c.PaymentHistory); n > 0 && c.PaymentHistory[n-1].Month != "" {
		stats.LastPayment = c.PaymentHistory[n-1].Month
	}
	for _, p := range c.AlertHistory {
		stats.Alerts += p.Alerts
	}
	return stats
}

func buildResult(c gateway.Consumer) Result {
	usage := make([]charts.Point, 0, len(c.UsageHistory))
	for _, p := range c.UsageHistory {
		usage = append(usage, charts.Point{Label: p.Month, Value: p.Usage})
	}
	payments := make([]charts.Point, 0, len(c.PaymentHistory))
	for _, p := range c.PaymentHistory {
		payments = append(payments, charts.Point{Label: p.Month, Value: float64(p.Paid)})
	}
	alerts := make([]charts.Point, 0, len(c.AlertHistory))
	for _, p := range c.AlertHistory {
		alerts = append(alerts, charts.Point{Label: p.Month, Value: float64(p.Alerts)})
	}

	res := Result{Consumer: c, Stats: summarize(c)}
	// Empty histories simply render without a chart.
	res.UsageChart, _ = charts.Line(usage, charts.LineOpts{Style: charts.Style{Title: "Usage Over Time"}, ShowDots: true})
	res.PaymentChart, _ = charts.Bars(payments, charts.BarOpts{Style: charts.Style{Title: "Payment History", Description: "Paid (1=Yes, 0=No)"}, Color: "#22c55e"})
	res.AlertChart, _ = charts.Bars(alerts, charts.BarOpts{Style: charts.Style{Title: "Alert History"}, Color: "#ef4444"})
	return res
}

package gateway

// Token is the bearer credential issued by the login endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is an account as returned by /users and /users/me.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// PermissionSet lists the role and permission names held by the caller.
type PermissionSet struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// Registration is the self-service sign-up payload.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// ProfileUpdate carries editable profile fields for the current user.
type ProfileUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// UserInput is the create/update payload for /users.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Message is the acknowledgement body of mutations without a resource.
type Message struct {
	Msg string `json:"msg"`
}

// DashboardStats are the headline counters of the home dashboard.
type DashboardStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	ActiveUsers   int64 `json:"activeUsers"`
	InactiveUsers int64 `json:"inactiveUsers"`
	AlertCases    int64 `json:"alertCases"`
}

// ChartItem is a named, coloured value.
type ChartItem struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// SegmentShare is a customer segment and its share in percent.
type SegmentShare struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color,omitempty"`
}

// PhaseSplit is the connection type breakdown in percent.
type PhaseSplit struct {
	SinglePhase float64 `json:"singlePhase"`
	ThreePhase  float64 `json:"threePhase"`
}

// DashboardCharts groups the chart series of the home dashboard.
type DashboardCharts struct {
	Regions        []ChartItem    `json:"regions"`
	Tension        []ChartItem    `json:"tension"`
	ReadingMethods []ChartItem    `json:"readingMethods"`
	Segments       []SegmentShare `json:"segments"`
	Phase          PhaseSplit     `json:"phase"`
}

// UsagePoint is monthly consumption in kWh.
type UsagePoint struct {
	Month string  `json:"month"`
	Usage float64 `json:"usage"`
}

// PaymentPoint records whether a monthly bill was paid (1) or not (0).
type PaymentPoint struct {
	Month string `json:"month"`
	Paid  int    `json:"paid"`
}

// AlertPoint is the number of alerts raised in a month.
type AlertPoint struct {
	Month  string `json:"month"`
	Alerts int    `json:"alerts"`
}

// Consumer is the analytics record looked up by customer number.
type Consumer struct {
	Name           string         `json:"name"`
	Number         string         `json:"number"`
	Email          string         `json:"email"`
	Status         string         `json:"status"`
	Region         string         `json:"region"`
	Segment        string         `json:"segment"`
	Phase          string         `json:"phase"`
	CreatedAt      string         `json:"createdAt"`
	UsageHistory   []UsagePoint   `json:"usage_history"`
	PaymentHistory []PaymentPoint `json:"payment_history"`
	AlertHistory   []AlertPoint   `json:"alert_history"`
	RecentActivity []string       `json:"recent_activity"`
}

// AdminRecord is an operator account as listed by /admin.
type AdminRecord struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FullName  string   `json:"full_name,omitempty"`
	Status    string   `json:"status"`
	Roles     []string `json:"roles"`
	LastLogin string   `json:"last_login,omitempty"`
	Avatar    string   `json:"avatar,omitempty"`
}

// AdminInput is the create/update payload for /admin.
type AdminInput struct {
	Username string   `json:"username"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Password string   `json:"password,omitempty"`
	Roles    []string `json:"roles"`
}

// AdminMetrics are the role bucket counters shown above the admin list.
type AdminMetrics struct {
	TotalAdmins  int `json:"totalAdmins"`
	ActiveAdmins int `json:"activeAdmins"`
	SubAdmins    int `json:"subAdmins"`
	Analysts     int `json:"analysts"`
}

// Role is a named bundle of permissions.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Permission grants access to one view.
type Permission struct {
	ID       int64  `json:"id"`
	ViewName string `json:"view_name"`
}

// Assignment binds a user to a role together with the role's permissions.
type Assignment struct {
	UserID        int64   `json:"user_id"`
	RoleID        int64   `json:"role_id"`
	PermissionIDs []int64 `json:"permission_ids"`
}

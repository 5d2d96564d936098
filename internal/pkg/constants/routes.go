package constants

// Route constants shared between controllers and the entitlement gate.
const (
	DashboardRoute    = "/dashboard"
	SubscriptionRoute = "/subscription"
	LoginRoute        = "/login"
	PublicRoute       = "/"
)

package constants

// Action is the value of the `action` query parameter understood by the events endpoint.
type Action string

const (
	ActionList        Action = "list"
	ActionUpcoming    Action = "upcoming"
	ActionPast        Action = "past"
	ActionCreate      Action = "create"
	ActionEdit        Action = "edit"
	ActionEditByTitle Action = "editByTitle"
	ActionDelete      Action = "delete"
	ActionLogin       Action = "login"
	ActionLogout      Action = "logout"
)

// Delete modes accepted by the delete action alongside the plain id form.
const (
	DeleteModeUpcomingTitle = "upcomingTitle"
	DeleteModeAllOnDay      = "allOnDay"
)

// Environment overrides read on top of the YAML config.
const (
	EnvAPIURL   = "CLUBDESK_API_URL"
	EnvAuthURL  = "CLUBDESK_AUTH_URL"
	EnvLocale   = "CLUBDESK_LOCALE"
	EnvTimezone = "CLUBDESK_TIMEZONE"
	EnvCache    = "CLUBDESK_CACHE"
	EnvDebug    = "CLUBDESK_DEBUG"
)

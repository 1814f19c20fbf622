package logger

// Level is the severity written with every entry. Security entries are
// kept apart from errors so auditors can filter on them.
type Level string

const (
	LevelInfo     Level = "INFO"
	LevelWarn     Level = "WARN"
	LevelError    Level = "ERROR"
	LevelSecurity Level = "SECURITY"
)

// Event classifies an entry independently of its message text.
type Event string

// Lifecycle and infrastructure.
const (
	EventServiceStartup  Event = "SERVICE_STARTUP"
	EventServiceShutdown Event = "SERVICE_SHUTDOWN"
	EventDBConnection    Event = "DB_CONNECTION"
	EventDBError         Event = "DB_ERROR"
	EventCacheError      Event = "CACHE_ERROR"
	EventEmailFailure    Event = "EMAIL_FAILURE"
	EventMediaFailure    Event = "MEDIA_FAILURE"
	EventHTTPRequest     Event = "HTTP_REQUEST"
	EventPanic           Event = "PANIC"
	EventGeneral         Event = "GENERAL"
)

// Accounts and access control.
const (
	EventValidationFailure Event = "VALIDATION_FAILURE"
	EventSignup            Event = "SIGNUP"
	EventLoginSuccess      Event = "LOGIN_SUCCESS"
	EventLoginFailure      Event = "LOGIN_FAILURE"
	EventAccessDenied      Event = "ACCESS_DENIED"
	EventInvalidToken      Event = "INVALID_TOKEN"
	EventExpiredToken      Event = "EXPIRED_TOKEN"
	EventRateLimited       Event = "RATE_LIMITED"
	EventAdminActivity     Event = "ADMIN_ACTIVITY"
	EventContentChange     Event = "CONTENT_CHANGE"
)

// Commerce.
const (
	EventOrderCreated    Event = "ORDER_CREATED"
	EventPaymentVerified Event = "PAYMENT_VERIFIED"
	EventPaymentRejected Event = "PAYMENT_REJECTED"
	EventPaymentFailed   Event = "PAYMENT_FAILED"
	EventPaymentRefunded Event = "PAYMENT_REFUNDED"
	EventGatewayError    Event = "GATEWAY_ERROR"
)

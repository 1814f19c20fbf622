package logger

// Request identifies the HTTP caller behind a security entry.
type Request struct {
	IP     string
	Method string
	Path   string
	UserID string
}

// Denied records a refused request at SECURITY level. extra is merged over
// the request fields.
func Denied(event Event, reason string, req Request, extra map[string]interface{}) {
	details := Fields(
		"ip", req.IP,
		"method", req.Method,
		"path", req.Path,
	)
	if req.UserID != "" {
		details["user_id"] = req.UserID
	}
	for k, v := range extra {
		details[k] = v
	}
	Security(event, reason, details)
}

// Payment ties our order to the gateway's records.
type Payment struct {
	OrderID        string
	UserID         string
	GatewayOrderID string
	PaymentID      string
	Amount         float64
	// Reason explains a rejection or a state change.
	Reason         string
}

func (p Payment) fields() map[string]interface{} {
	details := Fields("order_id", p.OrderID)
	set := func(k, v string) {
		if v != "" {
			details[k] = v
		}
	}
	set("user_id", p.UserID)
	set("razorpay_order_id", p.GatewayOrderID)
	set("razorpay_payment_id", p.PaymentID)
	set("reason", p.Reason)
	if p.Amount != 0 {
		details["amount"] = p.Amount
	}
	return details
}

// PaymentStep records one step of a payment. Rejected verifications are
// SECURITY, steps with a cause are ERROR and the rest are INFO.
func PaymentStep(event Event, message string, p Payment, cause error) {
	details := p.fields()
	level := LevelInfo
	if cause != nil {
		level = LevelError
		details["error"] = cause.Error()
	}
	if event == EventPaymentRejected {
		level = LevelSecurity
	}
	Default().write(level, event, message, details)
}

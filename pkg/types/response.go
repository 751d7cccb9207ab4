package types

// APIError is the body written for every failed request. The POS front end
// reads message at the top level.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// MessageResponse is the body of writes that only acknowledge success.
type MessageResponse struct {
	Message string `json:"message"`
}

// OrderCreatedResponse is returned by POST /api/orders.
type OrderCreatedResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"orderId"`
}

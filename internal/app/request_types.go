package app

// InterpretOrderRequest is the input for InterpretOrder.
type InterpretOrderRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

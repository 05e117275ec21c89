package errors

var (
	ErrOrderNotFound = &DomainError{
		Code:    "ORDER_NOT_FOUND",
		Message: "order not found",
	}
	ErrInvalidOrder = &DomainError{
		Code:    "INVALID_ORDER",
		Message: "invalid order",
	}
	ErrDuplicateOrder = &DomainError{
		Code:    "DUPLICATE_ORDER",
		Message: "order already exists",
	}
	ErrForbidden = &DomainError{
		Code:    "FORBIDDEN",
		Message: "insufficient permissions",
	}
	ErrInvalidPayment = &DomainError{
		Code:    "INVALID_PAYMENT",
		Message: "invalid payment parameters",
	}
)

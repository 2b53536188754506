package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrTOTPRequired = ErrorResponse{
		Status:  "error",
		Error:   "totp_required",
		Details: "Two-factor code required",
	}

	ErrUserAlreadyExists = ErrorResponse{
		Status:  "error",
		Error:   "user_already_exists",
		Details: "User with this email or username already exists",
	}

	ErrPostNotFound = ErrorResponse{
		Status:  "error",
		Error:   "post_not_found",
		Details: "Post does not exist",
	}

	ErrSlugConflict = ErrorResponse{
		Status:  "error",
		Error:   "slug_conflict",
		Details: "Could not allocate a unique slug",
	}

	ErrForbidden = ErrorResponse{
		Status:  "error",
		Error:   "forbidden",
		Details: "Operation not permitted for this role",
	}

	ErrNotFound = ErrorResponse{
		Status: "error",
		Error:  "not_found",
	}

	ErrInternal = ErrorResponse{
		Status:  "error",
		Error:   "internal_error",
		Details: "Something went wrong",
	}
)

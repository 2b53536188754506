package response

type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ListResponse wraps paginated collections; Total is the match count
// before limit/offset.
type ListResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Total  int         `json:"total"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

func SuccessMessage(message string) Response {
	return Response{
		Status:  "success",
		Message: message,
	}
}

func ListSuccessResponse(data interface{}, total int) ListResponse {
	return ListResponse{
		Status: "success",
		Data:   data,
		Total:  total,
	}
}

func ErrorResponseWithDetails(err, details string) ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Error:   err,
		Details: details,
	}
}

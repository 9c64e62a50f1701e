package serverutils

// ErrorBody is the JSON envelope for error responses.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func ErrorResponse(code int, message string) ErrorBody {
	return ErrorBody{Code: code, Message: message}
}

// SuccessBody is the JSON envelope for successful responses.
type SuccessBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func SuccessResponse(message string, data interface{}) SuccessBody {
	return SuccessBody{Success: true, Message: message, Data: data}
}

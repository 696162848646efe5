package handler

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Mode    string      `json:"mode,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

// NewReportResponse carries report rows plus the mode that produced them,
// so degraded results are distinguishable at the envelope level.
func NewReportResponse(mode string, data interface{}) *Response {
	return &Response{
		Status: "success",
		Mode:   mode,
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

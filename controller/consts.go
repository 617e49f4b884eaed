package controller

const (
	Success = 0

	InvalidToken     = 301
	LoginAgainNeeded = 302

	ParameterError  = 400
	InvalidUsername = 401
	InvalidEmail    = 402
	InvalidCameraId = 403
	InvalidAlarmId  = 404
	InvalidStatus   = 405

	InternalError   = 500
	DatabaseFailure = 501
	EmailFailure    = 502
)

var (
	SuccessResponse = BaseResponse{
		Message: "success",
		Code:    Success,
	}

	ParameterErrorResponse = BaseResponse{
		Message: "parameter error",
		Code:    ParameterError,
	}

	InvalidUsernameResponse = BaseResponse{
		Message: "invalid username",
		Code:    InvalidUsername,
	}

	InvalidEmailResponse = BaseResponse{
		Message: "invalid email",
		Code:    InvalidEmail,
	}

	InvalidCameraIdResponse = BaseResponse{
		Message: "invalid camera id",
		Code:    InvalidCameraId,
	}

	InvalidAlarmIdResponse = BaseResponse{
		Message: "invalid alarm id",
		Code:    InvalidAlarmId,
	}

	InvalidStatusResponse = BaseResponse{
		Message: "invalid alert status",
		Code:    InvalidStatus,
	}
)

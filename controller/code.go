package controller

type ResCode int64

const (
	CodeSuccess ResCode = 1000 + iota
	CodeInvalidParams
	CodeUserExist
	CodeUserNotExist
	CodeInvalidPassword
	CodeServerBusy
	CodeInvalidToken
	CodeNeedLogin
	CodeCreationNotFound
	CodeGenerationFailed
	CodeStageConflict
	CodeStageOrder
	CodeInsufficientTokens
)

var codeMsgMap = map[ResCode]string{
	CodeSuccess:            "success",
	CodeInvalidParams:      "invalid request parameters",
	CodeUserExist:          "user already exists",
	CodeUserNotExist:       "user does not exist",
	CodeInvalidPassword:    "wrong username or password",
	CodeServerBusy:         "server busy",
	CodeInvalidToken:       "invalid token",
	CodeNeedLogin:          "login required",
	CodeCreationNotFound:   "creation not found",
	CodeGenerationFailed:   "generation stage failed",
	CodeStageConflict:      "a generation stage is already running",
	CodeStageOrder:         "stage not eligible yet",
	CodeInsufficientTokens: "insufficient tokens",
}

func (c ResCode) Msg() string {
	msg, ok := codeMsgMap[c]
	if !ok {
		msg = codeMsgMap[CodeServerBusy]
	}
	return msg
}

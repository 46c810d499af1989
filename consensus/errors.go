package consensus

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CONFIG_ERR_ALGORITHM          ErrorCode = "CONFIG_ERR_ALGORITHM"
	POW_ERR_UNSUPPORTED_ALGORITHM ErrorCode = "POW_ERR_UNSUPPORTED_ALGORITHM"

	SCRIPT_ERR_PUSH_TOO_LARGE ErrorCode = "SCRIPT_ERR_PUSH_TOO_LARGE"

	TX_ERR_PARSE            ErrorCode = "TX_ERR_PARSE"
	TX_ERR_SCRIPT_TOO_LARGE ErrorCode = "TX_ERR_SCRIPT_TOO_LARGE"

	BLOCK_ERR_PARSE ErrorCode = "BLOCK_ERR_PARSE"
)

// Error carries a stable machine-readable code next to a human message.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func txerr(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// CodeOf returns the ErrorCode carried anywhere in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

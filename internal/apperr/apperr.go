// Package apperr 业务层统一错误对象，transport 层集中映射为响应码
package apperr

type Error struct {
	Code int    // 对应 response 的业务码（400/401/403/404/500）
	Msg  string // 原样返回给调用方的文案
	Err  error  // 内部原因，仅日志用
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &Error{Code: 400, Msg: msg} }
func Unauthorized(msg string) error { return &Error{Code: 401, Msg: msg} }
func Forbidden(msg string) error    { return &Error{Code: 403, Msg: msg} }
func NotFound(msg string) error     { return &Error{Code: 404, Msg: msg} }

// Conflict 业务冲突（重复点赞、自降权限等），对外同 400
func Conflict(msg string) error { return &Error{Code: 400, Msg: msg} }

func Internal(msg string, err error) error { return &Error{Code: 500, Msg: msg, Err: err} }

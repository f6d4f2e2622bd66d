package errx

// 引擎只在“开局数据不合法”这类调用方问题上返回错误；
// 回合内的游戏逻辑状况（城市缺失、目标已阵亡等）只记日志，不走这里。
const (
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeUnavailable  Code = "SERVICE_UNAVAILABLE"
	CodeInvalidSetup Code = "INVALID_SETUP"
	CodeNotFound     Code = "NOT_FOUND"
	CodeTimeout      Code = "TIMEOUT"
)

var (
	ErrInternal     = NewSys(CodeInternal, "引擎内部错误")
	ErrUnavailable  = NewSys(CodeUnavailable, "依赖不可用")
	ErrTimeout      = NewSys(CodeTimeout, "请求超时")
	ErrInvalidSetup = NewBiz(CodeInvalidSetup, "对局初始化数据不合法")
	ErrNotFound     = NewBiz(CodeNotFound, "对象不存在")
)

package portfolio

import "errors"

// 订单级错误是可恢复的：拒单后周期继续。
// ErrInvalidCapital 是构造期致命错误，进程不应带病启动。
var (
	ErrInvalidOrderParams = errors.New("invalid order parameters")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInvalidCapital     = errors.New("initial capital must be positive")
)

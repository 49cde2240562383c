package strategy

import (
	"context"
	"fmt"

	"shadowtrade/internal/market"
)

type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Signal 是策略对单个 symbol 的评估结论。
// Hold 信号的 Quantity/Reason 无意义；Buy/Sell 必须带正数量。
type Signal struct {
	Action   Action
	Quantity int64
	Reason   string
}

func Hold() Signal { return Signal{Action: ActionHold} }

func Buy(qty int64, format string, args ...any) Signal {
	return Signal{Action: ActionBuy, Quantity: qty, Reason: fmt.Sprintf(format, args...)}
}

func Sell(qty int64, format string, args ...any) Signal {
	return Signal{Action: ActionSell, Quantity: qty, Reason: fmt.Sprintf(format, args...)}
}

// Strategy 对给定行情做出买/卖/观望判断。
// 实现必须是输入数据的纯函数：相同行情输入产生相同信号，周期可复现。
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, data market.Data) Signal
}

package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderBuy  OrderType = "BUY"
	OrderSell OrderType = "SELL"
)

type OrderStatus string

const (
	OrderFilled   OrderStatus = "FILLED"
	OrderRejected OrderStatus = "REJECTED"
)

// Order 是一笔模拟成交的不可变记录。只有成交的订单会进入组合的订单簿；
// 被拒绝的请求以错误形式返回，不产生 Order。
type Order struct {
	ID        string          `json:"id"`
	Type      OrderType       `json:"type"`
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Fee       decimal.Decimal `json:"fee"`
	Strategy  string          `json:"strategy"`
	Reason    string          `json:"reason"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// Notional 返回成交金额（不含手续费）。
func (o Order) Notional() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Quantity))
}

// OrderRequest 描述一次交易信号到订单的转换输入。
type OrderRequest struct {
	Symbol   string
	Type     OrderType
	Quantity int64
	Price    decimal.Decimal
	Strategy string
	Reason   string
}

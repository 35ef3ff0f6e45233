package model

// OrdersPage is the paginated listing envelope.
type OrdersPage struct {
	Total int     `json:"total"`
	Pages int     `json:"pages"`
	First *int    `json:"first"`
	Next  *int    `json:"next"`
	Prev  *int    `json:"prev"`
	Data  []Order `json:"data"`
}

// TransitionResult reports a completed status transition.
type TransitionResult struct {
	Order  *Order      `json:"order"`
	From   OrderStatus `json:"from"`
	To     OrderStatus `json:"to"`
	Reason *string     `json:"reason,omitempty"`
}

// LineItemsSummary is the line-item listing with aggregate counters.
type LineItemsSummary struct {
	Data      []OrderLineItem `json:"data"`
	LineCount int             `json:"lineCount"`
	ItemCount int             `json:"itemCount"`
	Subtotal  float64         `json:"subtotal"`
}

// TopProduct is one entry of the most-purchased ranking.
type TopProduct struct {
	Name          string `json:"name"`
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	TotalQuantity int    `json:"totalQuantity"`
	OrderCount    int    `json:"orderCount"`
}

// OrderStats aggregates order counts and spend for a caller's scope.
type OrderStats struct {
	TotalOrders  int          `json:"totalOrders"`
	InProcess    int          `json:"inProcess"`
	Delayed      int          `json:"delayed"`
	Delivered    int          `json:"delivered"`
	Cancelled    int          `json:"cancelled"`
	TotalSpent   float64      `json:"totalSpent"`
	AverageOrder float64      `json:"averageOrder"`
	TopProducts  []TopProduct `json:"topProducts"`
}

// StatusBucket aggregates orders sharing one status.
type StatusBucket struct {
	Status       OrderStatus `json:"status"`
	Count        int         `json:"count"`
	TotalValue   float64     `json:"totalValue"`
	AverageValue float64     `json:"averageValue"`
}

// MonthlyBucket counts orders created in one month with one status.
type MonthlyBucket struct {
	Month  string      `json:"month"` // YYYY-MM
	Status OrderStatus `json:"status"`
	Count  int         `json:"count"`
}

// StatusDuration is the average time spent before reaching a status,
// computed from consecutive history timestamps per order.
type StatusDuration struct {
	Status       OrderStatus `json:"status"`
	AverageHours float64     `json:"averageHours"`
}

// StatusStats is the response of GET /api/orders/status-stats.
type StatusStats struct {
	PerStatus     []StatusBucket                `json:"perStatus"`
	MonthlyTrends []MonthlyBucket               `json:"monthlyTrends"`
	AverageTimes  []StatusDuration              `json:"averageTimes"`
	Statuses      []OrderStatus                 `json:"statuses"`
	Transitions   map[OrderStatus][]OrderStatus `json:"transitions"`
}

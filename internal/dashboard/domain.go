package dashboard

// Summary carries the counters shown on the landing dashboard for one
// store. Amounts are in centimes; the Label fields hold the French-locale
// rendering the screens display verbatim.
type Summary struct {
	StoreID          *int64 `json:"store_id"`
	SalesTodayCents  int64  `json:"sales_today_cents"`
	SalesMonthCents  int64  `json:"sales_month_cents"`
	SalesTodayLabel  string `json:"sales_today_label"`
	SalesMonthLabel  string `json:"sales_month_label"`
	OrdersToday      int    `json:"orders_today"`
	StockAlerts      int    `json:"stock_alerts"`
	WorkshopPending  int    `json:"workshop_pending"`
	WorkshopReady    int    `json:"workshop_ready"`
	ClientsTotal     int    `json:"clients_total"`
	UnreadMessages   int    `json:"unread_messages"`
}

// SalesTotals groups the revenue aggregates fetched in one query.
type SalesTotals struct {
	TodayCents  int64
	MonthCents  int64
	OrdersToday int
}

// WorkshopCounts groups the repair-queue aggregates.
type WorkshopCounts struct {
	Pending int
	Ready   int
}

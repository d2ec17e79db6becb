package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shop_api",
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Total number of successfully created orders",
	})

	ordersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shop_api",
		Subsystem: "orders",
		Name:      "cancelled_total",
		Help:      "Total number of cancelled orders",
	})

	stockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shop_api",
		Subsystem: "orders",
		Name:      "insufficient_stock_total",
		Help:      "Total number of orders rejected due to insufficient stock",
	})
)

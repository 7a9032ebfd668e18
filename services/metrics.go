package services

import "github.com/prometheus/client_golang/prometheus"

var (
	checkoutOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_checkout_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	cartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_cart_operations_total",
			Help: "Cart mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	notificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shop_notification_failures_total",
			Help: "Order notifications that could not be delivered",
		},
	)
)

// Collectors lists the shop metrics for registration by the metrics endpoint.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{checkoutOutcomes, cartOperations, notificationFailures}
}

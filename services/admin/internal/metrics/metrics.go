package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ShipmentsTotal 발송 처리 건수
	ShipmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_admin_shipments_total",
		Help: "Total number of orders shipped",
	})

	// RefundDecisionsTotal 환불 결정 건수 (decision: approve | reject)
	RefundDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_admin_refund_decisions_total",
		Help: "Total number of refund decisions",
	}, []string{"decision"})

	// RefundGatewayFailuresTotal 게이트웨이 일시 장애 건수
	RefundGatewayFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_admin_refund_gateway_failures_total",
		Help: "Total number of transient refund gateway failures",
	})

	// VersionConflictsTotal 낙관적 잠금 충돌 건수
	VersionConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_admin_version_conflicts_total",
		Help: "Total number of optimistic lock conflicts",
	})
)

// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package metrics exposes the delivery engine's counters and gauges for
// the `status`/`peers` commands' `--metrics` flag.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "whisper"

// Registry is the package's private Prometheus registry, so whisper's
// metrics never collide with anything a host process also registers.
var Registry = prometheus.NewRegistry()

var (
	// MessagesSent counts messages handed to the transport, by outcome.
	MessagesSent = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "messages_sent_total",
			Help:      "Total number of messages handed to the transport",
		},
		[]string{"status"}, // sent, failed
	)

	// MessagesReceived counts inbound frames classified by the wire codec.
	MessagesReceived = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "messages_received_total",
			Help:      "Total number of inbound frames processed, by kind",
		},
		[]string{"kind"}, // text, receipt, invite
	)

	// PendingQueueDepth tracks the current number of queued-but-unsent
	// outbound entries across all peers.
	PendingQueueDepth = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "pending_queue_depth",
			Help:      "Current number of queued outbound entries awaiting delivery",
		},
	)

	// PeersOnline tracks the current number of connected peers.
	PeersOnline = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "peers_online",
			Help:      "Current number of peers with an open transport connection",
		},
	)
)

package main

import (
	"context"
	"fmt"

	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/sudokatie/whisper/identity"
	"github.com/sudokatie/whisper/internal/metrics"
)

var statusMetrics bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show this node's identity and vault summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !identity.Exists(keypairPath(dataDir)) {
			fmt.Println("No identity found. Run: whisper init")
			return nil
		}

		st, eng, _, err := openSession()
		if err != nil {
			return err
		}
		defer st.Close()

		contacts, err := st.ListContacts()
		if err != nil {
			return err
		}

		health, err := eng.CheckHealth(context.Background())
		if err != nil {
			return err
		}

		fmt.Println("Whisper Status")
		fmt.Println("==============")
		fmt.Printf("Node ID: %s\n", health.SelfNodeID)
		fmt.Printf("Contacts: %d\n", len(contacts))
		fmt.Printf("Peers known / online: %d / %d\n", health.PeersKnown, health.PeersOnline)
		fmt.Printf("Pending outbound: %d\n", health.PendingCount)
		fmt.Printf("Data Dir: %s\n", dataDir)

		if statusMetrics {
			printMetricsSnapshot()
		}
		return nil
	},
}

// printMetricsSnapshot renders the current values of whisper's private
// Prometheus registry (internal/metrics) for `status --metrics` and
// `peers --metrics`, without standing up the /metrics HTTP endpoint.
func printMetricsSnapshot() {
	families, err := metrics.Registry.Gather()
	if err != nil {
		fmt.Printf("metrics unavailable: %v\n", err)
		return
	}

	fmt.Println()
	fmt.Println("Metrics")
	fmt.Println("=======")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Printf("  %s%s %s\n", mf.GetName(), labelSuffix(m), metricValue(m))
		}
	}
}

func labelSuffix(m *dto.Metric) string {
	labels := m.GetLabel()
	if len(labels) == 0 {
		return ""
	}
	s := "{"
	for i, l := range labels {
		if i > 0 {
			s += ","
		}
		s += l.GetName() + "=" + l.GetValue()
	}
	return s + "}"
}

func metricValue(m *dto.Metric) string {
	switch {
	case m.Counter != nil:
		return fmt.Sprintf("%g", m.Counter.GetValue())
	case m.Gauge != nil:
		return fmt.Sprintf("%g", m.Gauge.GetValue())
	default:
		return ""
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusMetrics, "metrics", false, "also print delivery engine metrics")
	rootCmd.AddCommand(statusCmd)
}

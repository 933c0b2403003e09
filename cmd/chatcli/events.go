package main

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"job-engine-be/pkg/events"
	pktNats "job-engine-be/pkg/nats"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow the domain events published on NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			natsURL, _ := cmd.Flags().GetString("nats")
			eventType, _ := cmd.Flags().GetString("type")

			sub, err := pktNats.NewSubscriber(natsURL)
			if err != nil {
				return fmt.Errorf("connect to NATS: %w", err)
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			subject := pktNats.Subject(">")
			if eventType != "" {
				subject = pktNats.Subject(strings.ToUpper(eventType))
			}

			out := cmd.OutOrStdout()
			err = sub.Subscribe(ctx, subject, "", func(ctx context.Context, evt events.Event) error {
				fmt.Fprintln(out, formatEvent(evt))
				return nil
			})
			if err != nil {
				return err
			}

			dimColor.Fprintf(out, "listening on %s, Ctrl+C to stop\n", subject)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().String("nats", envOr("NATS_URL", "nats://localhost:4222"), "NATS server URL")
	cmd.Flags().String("type", "", "only follow this event type, e.g. JOB_SEARCH_PERFORMED")
	return cmd
}

func formatEvent(evt events.Event) string {
	payload := evt.Payload()
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, payload[k]))
	}
	return fmt.Sprintf("%s %s %s", evt.Timestamp().Local().Format(time.TimeOnly), evt.EventType(), strings.Join(parts, " "))
}

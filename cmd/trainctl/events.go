package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"training-os-be/internal/config"
	"training-os-be/pkg/events"
	pktNats "training-os-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	eventsType    string
	eventsDurable string
)

func init() {
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "only this event type, e.g. SYNC_COMPLETED")
	eventsCmd.Flags().StringVar(&eventsDurable, "durable", "", "durable consumer name to resume from")
	rootCmd.AddCommand(eventsCmd)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow sync and import events published to NATS",
	RunE: func(cmd *cobra.Command, args []string) error {
		if eventsType != "" && !knownEventType(eventsType) {
			return fmt.Errorf("unknown event type %q, expected one of %s", eventsType, strings.Join(events.Types, ", "))
		}
		cfg := config.Load()
		if cfg.App.NatsURL == "" {
			return fmt.Errorf("NATS_URL is not set")
		}

		sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			return err
		}
		defer sub.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return sub.Subscribe(ctx, eventsType, eventsDurable, func(_ context.Context, e events.Event) error {
			printEvent(e)
			return nil
		})
	},
}

func knownEventType(t string) bool {
	for _, known := range events.Types {
		if t == known {
			return true
		}
	}
	return false
}

func printEvent(e events.Event) {
	keys := make([]string, 0, len(e.Payload()))
	for k := range e.Payload() {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Payload()[k]))
	}
	color.Cyan("%s %s", e.Timestamp().Local().Format("2006-01-02 15:04:05"), e.EventType())
	fmt.Printf("  %s\n", strings.Join(parts, " "))
}

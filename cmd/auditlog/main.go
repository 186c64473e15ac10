// Command auditlog tails processed-request events from the NATS bus and
// prints them, one JSON line per event. Useful for watching the agent in
// another terminal without touching its database.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"inventory-agent-be/internal/config"
	"inventory-agent-be/pkg/events"
	pktNats "inventory-agent-be/pkg/nats"
)

func main() {
	cfg := config.Load()

	sub, err := pktNats.NewSubscriber(cfg.Audit.NatsURL)
	if err != nil {
		log.Fatalf("Unable to connect to NATS: %v", err)
	}
	defer sub.Close()

	subject := "events." + cfg.Audit.Topic
	err = sub.Subscribe(subject, "auditlog-tail", func(_ context.Context, event events.Event) error {
		line, err := json.Marshal(event.Payload())
		if err != nil {
			return err
		}
		os.Stdout.Write(append(line, '\n'))
		return nil
	})
	if err != nil {
		log.Fatalf("Unable to subscribe to %s: %v", subject, err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

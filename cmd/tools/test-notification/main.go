// Command test-notification publishes a single custom push so the delivery
// pipeline can be smoke-tested without going through the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/libraria-api/internal/application/dispatch"
	"github.com/libraria-api/internal/config"
	"github.com/libraria-api/internal/infrastructure/push"
	"github.com/libraria-api/internal/pkg/logger"
)

func main() {
	title := flag.String("title", "📚 Libër i ri për test!", "notification title")
	body := flag.String("body", "Historia e Profetit Musa", "notification body")
	topic := flag.String("topic", "", "audience topic (default: configured default topic)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, "console")
	defer func() { _ = log.Sync() }()

	sender, err := push.NewSender(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "push sender init failed: %v\n", err)
		os.Exit(1)
	}

	svc := dispatch.NewService(dispatch.ServiceDeps{
		Sender:       sender,
		DefaultTopic: cfg.PushDefaultTopic,
		Logger:       log,
	})

	msgID, err := svc.Custom(context.Background(), dispatch.CustomRequest{
		Title: *title,
		Body:  *body,
		Topic: *topic,
		Data: map[string]interface{}{
			"type":        "announcement",
			"title":       *title,
			"cover_image": "https://example.com/book.jpg",
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "notification failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("notification sent: %s\n", msgID)
}

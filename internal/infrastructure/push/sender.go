package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/libraria-api/internal/config"
)

// Message is a single push notification addressed to a broadcast topic.
// Data values must already be strings — the payload builders in
// application/dispatch guarantee that by construction.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
	Topic string
}

// Sender delivers one push message and returns the provider's message id.
// Implementations must convert every transport or service failure into an
// error value; nothing may panic past this boundary.
type Sender interface {
	Send(ctx context.Context, m Message) (string, error)
}

// envelope is the wire shape consumed by the mobile clients. Keys and types
// are a stable external contract.
type envelope struct {
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"notification"`
	Data map[string]string `json:"data"`
}

type sender struct {
	client    *sns.Client
	arnPrefix string
	timeout   time.Duration
}

// NewSender creates an SNS-backed Sender. The topic a message names is
// resolved to a topic ARN via cfg.PushTopicARNPrefix.
func NewSender(cfg *config.Config) (Sender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for SNS: %w", err)
	}

	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}

	return &sender{
		client:    sns.NewFromConfig(awsCfg, clientOpts...),
		arnPrefix: cfg.PushTopicARNPrefix,
		timeout:   cfg.PushTimeout,
	}, nil
}

func (s *sender) Send(ctx context.Context, m Message) (string, error) {
	var env envelope
	env.Notification.Title = m.Title
	env.Notification.Body = m.Body
	env.Data = m.Data
	if env.Data == nil {
		env.Data = map[string]string{}
	}

	body, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal push envelope: %w", err)
	}

	// The upstream publish had no deadline; an unreachable provider would
	// block the caller indefinitely. Expiry surfaces as a normal send failure.
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.arnPrefix + m.Topic),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", m.Topic, err)
	}
	return aws.ToString(out.MessageId), nil
}

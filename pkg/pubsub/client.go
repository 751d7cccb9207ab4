// Package pubsub wraps the Pub/Sub v2 SDK for the outbox relay and the
// inventory subscribers. PUBSUB_EMULATOR_HOST is honoured by the SDK.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"go.uber.org/multierr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

const (
	kindTopic        = "topics"
	kindSubscription = "subscriptions"
)

type Client struct {
	sdk       *pubsub.Client
	projectID string
	topics    []string
}

// NewClient connects and fails unless every configured topic exists.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errors.New("pubsub: gcp project id is required")
	}
	topics := topicNames(cfg)
	if len(topics) == 0 {
		return nil, errors.New("pubsub: no topics configured")
	}

	sdk, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("pubsub: new client: %w", err)
	}
	c := &Client{sdk: sdk, projectID: projectID, topics: topics}
	if err := c.Ping(ctx); err != nil {
		return nil, multierr.Append(err, sdk.Close())
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"gcp_project": projectID,
			"topics":      topics,
		}), "pubsub.connected")
	}
	return c, nil
}

func topicNames(cfg config.PubSubConfig) []string {
	var names []string
	for _, n := range []string{cfg.OrdersTopic, cfg.InventoryTopic} {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Ping looks up every configured topic and reports all that are missing.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.sdk == nil {
		return errors.New("pubsub: client not initialized")
	}
	var errs error
	for _, name := range c.topics {
		_, err := c.sdk.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.resource(kindTopic, name)})
		errs = multierr.Append(errs, lookupError("topic", name, err))
	}
	return errs
}

// CheckSubscription fails when name does not resolve to an existing subscription.
func (c *Client) CheckSubscription(ctx context.Context, name string) error {
	full := c.resource(kindSubscription, name)
	if full == "" {
		return fmt.Errorf("pubsub: subscription %q not configured", name)
	}
	_, err := c.sdk.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: full})
	return lookupError("subscription", name, err)
}

func lookupError(kind, name string, err error) error {
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("pubsub: %s %q does not exist", kind, name)
	default:
		return fmt.Errorf("pubsub: get %s %q: %w", kind, name, err)
	}
}

// Subscription returns a receiver handle, or nil when name is blank.
func (c *Client) Subscription(name string) *pubsub.Subscriber {
	if full := c.resource(kindSubscription, name); full != "" {
		return c.sdk.Subscriber(full)
	}
	return nil
}

// Publisher returns a batching publisher handle, or nil when name is blank.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if full := c.resource(kindTopic, name); full != "" {
		return c.sdk.Publisher(full)
	}
	return nil
}

func (c *Client) Close() error {
	if c == nil || c.sdk == nil {
		return nil
	}
	return c.sdk.Close()
}

// resource expands a short ID to projects/<p>/<kind>/<id>. Full names pass
// through untouched.
func (c *Client) resource(kind, name string) string {
	name = strings.TrimSpace(name)
	if c == nil || name == "" {
		return ""
	}
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/"+kind+"/") {
		return name
	}
	if c.projectID == "" {
		return ""
	}
	return "projects/" + c.projectID + "/" + kind + "/" + name
}

package notify

import (
	"fmt"

	"github.com/slack-go/slack"

	"sampletrack/internal/config"
)

// OpsNotifier posts short run notices to the operations Slack channel:
// run finished, warning counts, failures. It is not used for the
// per-entity report mails.
type OpsNotifier struct {
	client  *slack.Client
	channel string
}

// NewOpsNotifier creates the ops notifier, or nil when Slack is
// disabled so callers can skip it with a nil check.
func NewOpsNotifier(cfg config.SlackConfig) *OpsNotifier {
	if !cfg.Enabled || cfg.Token == "" || cfg.Channel == "" {
		return nil
	}
	return &OpsNotifier{
		client:  slack.New(cfg.Token),
		channel: cfg.Channel,
	}
}

// Post sends one plain-text notice.
func (o *OpsNotifier) Post(text string) error {
	_, _, err := o.client.PostMessage(o.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post to %s: %w", o.channel, err)
	}
	return nil
}

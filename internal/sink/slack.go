// slack.go — Slack channel delivery.
package sink

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/logsieve/logsieve/internal/types"
)

// slackAPI is the slice of slack.Client the sink needs.
type slackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackSink posts rendered reports to one channel.
type SlackSink struct {
	api     slackAPI
	channel string
}

// NewSlackSink builds a sink posting to channel with the given bot token.
func NewSlackSink(token, channel string) *SlackSink {
	return &SlackSink{api: slack.New(token), channel: channel}
}

// newSlackSinkWithAPI is the injectable constructor used by tests.
func newSlackSinkWithAPI(api slackAPI, channel string) *SlackSink {
	return &SlackSink{api: api, channel: channel}
}

// Publish implements Sink.
func (s *SlackSink) Publish(ctx context.Context, result types.AnalysisResult) error {
	_, _, err := s.api.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(RenderText(result), false))
	if err != nil {
		return fmt.Errorf("%w: slack post to %s: %v", ErrPublishFailed, s.channel, err)
	}
	return nil
}

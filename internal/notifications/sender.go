// Package notifications delivers moderation outcomes to submitters'
// devices through Expo push.
package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// PushSender is the delivery seam: handlers depend on it rather than
// the Expo client directly so tests can swap in a recorder. The
// message types stay exponent's own.
type PushSender interface {
	Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error)
	PublishSingle(ctx context.Context, msg *exponent.Message) ([]*exponent.MessageResponse, error)
}

package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/9ssi7/exponent"
)

type ModerationEvent string

const (
	ProposalApproved ModerationEvent = "PROPOSAL_APPROVED"
	ProposalRejected ModerationEvent = "PROPOSAL_REJECTED"
	ReportResolved   ModerationEvent = "REPORT_RESOLVED"
	ReportRejected   ModerationEvent = "REPORT_REJECTED"
)

// TokenLookup fetches the Expo push tokens registered for a set of users.
type TokenLookup interface {
	GetTokensByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]string, error)
}

var ErrNoTokens = errors.New("no push tokens")

// SendModerationNotification tells the submitter of a venue proposal or
// report how an admin resolved it. Best effort: callers log failures and
// move on, resolution itself never depends on delivery.
func SendModerationNotification(ctx context.Context, push PushSender, tokens TokenLookup, userID int64, event ModerationEvent, subject string) error {
	tokensMap, err := tokens.GetTokensByUserIDs(ctx, []int64{userID})
	if err != nil {
		return err
	}
	userTokens := tokensMap[userID]
	if len(userTokens) == 0 {
		return ErrNoTokens
	}

	var title, body string
	switch event {
	case ProposalApproved:
		title = "Venue proposal approved"
		body = fmt.Sprintf("Your proposal %q is now listed. Thanks for contributing!", subject)
	case ProposalRejected:
		title = "Venue proposal rejected"
		body = fmt.Sprintf("Your proposal %q was not accepted. Check the reviewer note for details.", subject)
	case ReportResolved:
		title = "Report resolved"
		body = fmt.Sprintf("Your report on %q has been applied. Thanks for keeping the data clean!", subject)
	case ReportRejected:
		title = "Report closed"
		body = fmt.Sprintf("Your report on %q was reviewed and closed.", subject)
	default:
		title = "Moderation update"
		body = fmt.Sprintf("There is an update on %q.", subject)
	}

	msgs := make([]*exponent.Message, 0, len(userTokens))
	for _, t := range userTokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":   "moderation",
				"event":  string(event),
				"screen": "my-submissions-screen",
			},
		})
	}

	_, err = push.Publish(ctx, msgs)
	return err
}

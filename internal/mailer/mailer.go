package mailer

import "context"

// Mailer delivers a rendered email. Implementations attempt delivery exactly
// once; retry policy is the caller's concern (and the wishlist service
// deliberately has none).
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

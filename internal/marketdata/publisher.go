package marketdata

import "context"

// Publisher delivers market-data events to one downstream transport.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

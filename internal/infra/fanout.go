package infra

import (
	"context"
	"errors"

	rabbit "harvesthub/internal/infra/rabbitmq"
)

// Fanout delivers every event to each publisher and joins their errors.
type Fanout []rabbit.PublisherInterface

func (f Fanout) Publish(ctx context.Context, routingKey string, data any) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, routingKey, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ rabbit.PublisherInterface = Fanout(nil)

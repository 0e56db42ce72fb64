package rabbitmq

import (
	"context"
	"errors"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"video-platform/config"
)

// ErrDiscard marks a delivery that must not be redelivered, e.g. an undecodable body.
var ErrDiscard = errors.New("discard message")

type Consumer[T any] interface {
	Consume(ctx context.Context, dependencies T) error
}

type consumer[T any] struct {
	conn       *amqp.Connection
	cfg        *config.RabbitMQ
	handler    func(ctx context.Context, msg amqp.Delivery, dependencies T) error
	numWorkers int
}

func (c consumer[T]) Consume(ctx context.Context, dependencies T) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	logger := zerolog.Ctx(ctx).With().Str("queue", c.cfg.QueueName).Logger()

	if err := declare(ch, c.cfg); err != nil {
		logger.Error().Err(err).Msg("failed to declare topology")
		return err
	}

	err = ch.Qos(c.numWorkers, 0, false)
	if err != nil {
		logger.Error().Err(err).Msg("failed to set QoS")
		return err
	}

	deliveries, err := ch.Consume(c.cfg.QueueName, "", false, false, false, false, nil)
	if err != nil {
		logger.Error().Err(err).Msg("failed to consume queue")
		return err
	}

	jobs := make(chan amqp.Delivery, c.numWorkers)
	var wg sync.WaitGroup
	for i := 1; i <= c.numWorkers; i++ {
		wg.Add(1)
		go func(workerId int) {
			defer wg.Done()
			workerLogger := logger.With().Int("worker", workerId).Logger()
			workerCtx := workerLogger.WithContext(ctx)
			for msg := range jobs {
				c.handle(workerCtx, msg, dependencies)
			}
		}(i)
	}

	for {
		select {
		case delivery, ok := <-deliveries:
			if !ok {
				close(jobs)
				wg.Wait()
				return nil
			}

			jobs <- delivery
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
}

// handle acks on success and nacks on failure.
func (c consumer[T]) handle(ctx context.Context, msg amqp.Delivery, dependencies T) {
	err := c.handler(ctx, msg, dependencies)
	if err == nil {
		if err := msg.Ack(false); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to acknowledge message")
		}
		return
	}

	requeue := shouldRequeue(err)
	zerolog.Ctx(ctx).Error().Err(err).Bool("requeue", requeue).Msg("failed to handle message")
	if err := msg.Nack(false, requeue); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to reject message")
	}
}

// shouldRequeue keeps every failed delivery, including ones cut short by a shutdown, unless
// the handler asked to discard it.
func shouldRequeue(err error) bool {
	return !errors.Is(err, ErrDiscard)
}

func NewConsumer[T any](
	conn *amqp.Connection,
	cfg *config.RabbitMQ,
	numWorkers int,
	handler func(ctx context.Context, msg amqp.Delivery, dependencies T) error,
) Consumer[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &consumer[T]{
		conn:       conn,
		cfg:        cfg,
		handler:    handler,
		numWorkers: numWorkers,
	}
}

func declare(ch *amqp.Channel, cfg *config.RabbitMQ) error {
	if err := ch.ExchangeDeclare(cfg.ExchangeName, cfg.Kind, true, false, false, false, nil); err != nil {
		return err
	}

	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return err
	}

	return ch.QueueBind(q.Name, cfg.RoutingKey, cfg.ExchangeName, false, nil)
}

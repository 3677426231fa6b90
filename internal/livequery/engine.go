package livequery

import (
	"context"
	"fmt"
	"log"

	"microfeed/internal/models"
	"microfeed/internal/repository"
)

// Broker carries "scope changed" notifications keyed by scope key.
type Broker interface {
	Publish(ctx context.Context, topic string) error
	Subscribe(ctx context.Context, topic string) (<-chan struct{}, func(), error)
}

type Engine struct {
	repo   repository.DocumentRepository
	broker Broker
}

func NewEngine(repo repository.DocumentRepository, broker Broker) *Engine {
	return &Engine{repo: repo, broker: broker}
}

// Snapshot runs the scope's query once.
func (e *Engine) Snapshot(ctx context.Context, scope models.Scope) (models.Snapshot, error) {
	if err := scope.Validate(); err != nil {
		return models.Snapshot{}, err
	}

	docs, err := e.repo.List(ctx, scope)
	if err != nil {
		return models.Snapshot{}, err
	}

	return models.Snapshot{Scope: scope.Key(), Documents: docs}, nil
}

// Insert writes doc and notifies every live query on the scope. On success
// doc carries the assigned id and timestamp.
func (e *Engine) Insert(ctx context.Context, scope models.Scope, doc *models.Document) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	if err := e.repo.Insert(ctx, scope, doc); err != nil {
		return err
	}

	// the row is committed; a lost notification only delays readers
	if err := e.broker.Publish(ctx, scope.Key()); err != nil {
		log.Printf("Ошибка уведомления подписчиков %s: %v", scope.Key(), err)
	}

	return nil
}

// Subscribe registers with the broker before the first query so a write
// between the two is never missed.
func (e *Engine) Subscribe(ctx context.Context, scope models.Scope) (*Subscription, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	changes, unsubscribe, err := e.broker.Subscribe(ctx, scope.Key())
	if err != nil {
		return nil, fmt.Errorf("ошибка подписки на %s: %w", scope.Key(), err)
	}

	sub := Start(ctx, scope, func(ctx context.Context, emit func(models.Snapshot)) error {
		defer unsubscribe()

		for {
			snap, err := e.Snapshot(ctx, scope)
			if err != nil {
				return err
			}
			emit(snap)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case _, ok := <-changes:
				if !ok {
					return fmt.Errorf("канал уведомлений %s закрыт", scope.Key())
				}
			}
		}
	})

	return sub, nil
}

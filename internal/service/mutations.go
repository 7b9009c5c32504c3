package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/ludoteca-console/internal/cache"
	"github.com/iliyamo/ludoteca-console/internal/loan"
	"github.com/iliyamo/ludoteca-console/internal/model"
	"github.com/iliyamo/ludoteca-console/internal/queue"
)

var kindLabels = map[model.Kind]string{
	model.KindCategory: "Category",
	model.KindAuthor:   "Author",
	model.KindGame:     "Game",
	model.KindClient:   "Client",
	model.KindLoan:     "Loan",
}

var opVerbs = map[model.Operation]string{
	model.OpCreate: "created",
	model.OpUpdate: "updated",
	model.OpDelete: "deleted",
}

// SuccessText is the message published when a mutation succeeds, e.g.
// "Category created successfully".
func SuccessText(kind model.Kind, op model.Operation) string {
	return fmt.Sprintf("%s %s successfully", kindLabels[kind], opVerbs[op])
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func mutate[T any](ctx context.Context, s *Console, kind model.Kind, op model.Operation, do func(context.Context) (T, error)) (T, error) {
	v, err := s.cache.Mutate(ctx, cache.Mutation{
		Kind:    kind,
		Op:      op,
		Success: SuccessText(kind, op),
		Do: func(ctx context.Context) (any, error) {
			return do(ctx)
		},
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func remove(ctx context.Context, s *Console, kind model.Kind, id string, do func(context.Context, string) error) error {
	if strings.TrimSpace(id) == "" {
		return invalid(ErrIDRequired)
	}
	_, err := mutate(ctx, s, kind, model.OpDelete, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, do(ctx, id)
	})
	return err
}

// SaveCategory creates c when it has no id and updates it otherwise.
func (s *Console) SaveCategory(ctx context.Context, c model.Category) (model.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return model.Category{}, invalid(ErrNameRequired)
	}
	return mutate(ctx, s, model.KindCategory, model.SaveOperation(c.ID), func(ctx context.Context) (model.Category, error) {
		return s.api.SaveCategory(ctx, c)
	})
}

func (s *Console) DeleteCategory(ctx context.Context, id string) error {
	return remove(ctx, s, model.KindCategory, id, s.api.DeleteCategory)
}

func (s *Console) SaveAuthor(ctx context.Context, a model.Author) (model.Author, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.Nationality = strings.TrimSpace(a.Nationality)
	if a.Name == "" {
		return model.Author{}, invalid(ErrNameRequired)
	}
	return mutate(ctx, s, model.KindAuthor, model.SaveOperation(a.ID), func(ctx context.Context) (model.Author, error) {
		return s.api.SaveAuthor(ctx, a)
	})
}

func (s *Console) DeleteAuthor(ctx context.Context, id string) error {
	return remove(ctx, s, model.KindAuthor, id, s.api.DeleteAuthor)
}

// SaveGame requires title, age, category and author. Games cannot be
// deleted through the backend.
func (s *Console) SaveGame(ctx context.Context, g model.Game) (model.Game, error) {
	g.Title = strings.TrimSpace(g.Title)
	if !g.Complete() {
		return model.Game{}, invalid(ErrGameIncomplete)
	}
	return mutate(ctx, s, model.KindGame, model.SaveOperation(g.ID), func(ctx context.Context) (model.Game, error) {
		return s.api.SaveGame(ctx, g)
	})
}

func (s *Console) SaveClient(ctx context.Context, c model.Client) (model.Client, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return model.Client{}, invalid(ErrNameRequired)
	}
	return mutate(ctx, s, model.KindClient, model.SaveOperation(c.ID), func(ctx context.Context) (model.Client, error) {
		return s.api.SaveClient(ctx, c)
	})
}

func (s *Console) DeleteClient(ctx context.Context, id string) error {
	return remove(ctx, s, model.KindClient, id, s.api.DeleteClient)
}

// SaveLoan validates in locally and only then sends it. Whether the game
// and client exist is left to the backend. An accepted loan is announced
// on the loan event queue when one is configured.
func (s *Console) SaveLoan(ctx context.Context, in model.LoanInput) (model.Loan, error) {
	in.GameID = strings.TrimSpace(in.GameID)
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.StartDate = model.DatePart(strings.TrimSpace(in.StartDate))
	in.EndDate = model.DatePart(strings.TrimSpace(in.EndDate))
	if err := loan.Validate(in); err != nil {
		return model.Loan{}, invalid(err)
	}

	op := model.SaveOperation(in.ID)
	l, err := mutate(ctx, s, model.KindLoan, op, func(ctx context.Context) (model.Loan, error) {
		return s.api.SaveLoan(ctx, in)
	})
	if err != nil {
		return model.Loan{}, err
	}
	s.announce(ctx, op, l)
	return l, nil
}

func (s *Console) DeleteLoan(ctx context.Context, id string) error {
	if err := remove(ctx, s, model.KindLoan, id, s.api.DeleteLoan); err != nil {
		return err
	}
	s.announce(ctx, model.OpDelete, model.Loan{ID: id})
	return nil
}

// announce publishes a loan event. Failures are logged only; the backend
// already accepted the change.
func (s *Console) announce(ctx context.Context, op model.Operation, l model.Loan) {
	if s.events == nil {
		return
	}
	ev := queue.NewLoanEvent(op, l, s.now())
	if err := s.events.PublishLoan(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn("loan event not published", "event_id", ev.EventID, "loan_id", l.ID, "err", err)
	}
}

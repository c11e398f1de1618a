package forum

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BanUserMessage struct {
	UserID uuid.UUID `json:"user_id"`
	Banned bool      `json:"banned"`
}

func (e BanUserMessage) Type() string { return "user.ban" }

type BanUserHandler struct {
	repo     RepositoryManager
	activity ActivitySink
}

func NewBanUserHandler(repo RepositoryManager) *BanUserHandler {
	return &BanUserHandler{
		repo:     repo,
		activity: noopActivitySink{},
	}
}

// WithActivitySink sets the sink used to emit moderation events.
func (h *BanUserHandler) WithActivitySink(sink ActivitySink) *BanUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *BanUserHandler) Execute(ctx context.Context, event BanUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user ban",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *BanUserHandler) execute(ctx context.Context, event BanUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := h.repo.Users().SetBannedTx(ctx, tx, event.UserID, event.Banned)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user ban transaction failed")
	}

	eventType := ActivityEventUserBanned
	if !event.Banned {
		eventType = ActivityEventUserUnbanned
	}

	// best effort, a failing sink never fails the ban
	_ = normalizeActivitySink(h.activity).Record(ctx, ActivityEvent{
		EventType:  eventType,
		UserID:     event.UserID.String(),
		Metadata:   map[string]any{},
		OccurredAt: time.Now(),
	})

	return nil
}

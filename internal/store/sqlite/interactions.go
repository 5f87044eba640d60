package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
)

// interactionTable maps an interaction kind to its existence table and the
// counter column it maintains on content.
type interactionTable struct {
	table   string
	counter string
}

var interactionTables = map[domain.InteractionKind]interactionTable{
	domain.InteractionLike: {table: "likes", counter: "likes"},
	domain.InteractionSave: {table: "saves", counter: "saves"},
}

func tableFor(kind domain.InteractionKind) (interactionTable, error) {
	t, ok := interactionTables[kind]
	if !ok {
		return interactionTable{}, domainerrors.Validationf("unknown interaction %q", kind)
	}
	return t, nil
}

// HasInteraction reports whether userID has a kind interaction with
// contentID. A missing content item is simply false.
func (s *Store) HasInteraction(ctx context.Context, kind domain.InteractionKind, userID, contentID string) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	var one int
	err = s.db.QueryRowContext(ctx,
		`SELECT 1 FROM `+t.table+` WHERE user_id = ? AND target_id = ?`,
		userID, contentID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, domainerrors.ReadFailure(err, "check "+string(kind))
	}
	return true, nil
}

// SetInteraction turns the kind interaction between userID and contentID
// on or off and keeps the content counter in step, in one transaction.
// It is idempotent: changed is false when the state already matched.
// Returns store.ErrNotFound if the content item does not exist.
func (s *Store) SetInteraction(ctx context.Context, kind domain.InteractionKind, userID, contentID string, on bool) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	if userID == "" {
		return false, domainerrors.Validation("user id is required")
	}

	var changed bool
	err = s.withTx(ctx, "set "+string(kind), func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM content WHERE id = ?`, contentID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domainerrors.NotFoundf("content %s not found", contentID)
		}
		if err != nil {
			return err
		}

		var res sql.Result
		delta := 1
		if on {
			res, err = tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO `+t.table+` (user_id, target_id, created_at) VALUES (?, ?, ?)`,
				userID, contentID, formatTime(time.Now()))
		} else {
			delta = -1
			res, err = tx.ExecContext(ctx,
				`DELETE FROM `+t.table+` WHERE user_id = ? AND target_id = ?`,
				userID, contentID)
		}
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		changed = true
		_, err = tx.ExecContext(ctx,
			`UPDATE content SET `+t.counter+` = MAX(`+t.counter+` + ?, 0) WHERE id = ?`,
			delta, contentID)
		return err
	})
	if err != nil {
		return false, writeError(err, "set "+string(kind))
	}
	return changed, nil
}

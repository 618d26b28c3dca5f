package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/quiz"
)

type historyRow struct {
	ExamID    string `db:"exam_id"`
	Date      string `db:"date"`
	Score     int    `db:"score"`
	Total     int    `db:"total"`
	CreatedAt int64  `db:"created_at"` // unix nanoseconds
}

type historyStore struct {
	db *sqlx.DB
}

var _ quiz.HistoryStore = (*historyStore)(nil)

func NewHistoryStore(db *sqlx.DB) quiz.HistoryStore {
	return &historyStore{db: db}
}

func (s *historyStore) Append(ctx context.Context, key core.ID, e quiz.Entry) error {
	q := s.db.Rebind(`
		INSERT INTO exam_history (owner_key, exam_id, date, score, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, key.String(), e.ExamID.String(), e.Date, e.Score, e.Total, e.CreatedAt.UnixNano()); err != nil {
		return errors.Wrap(err, "inserting history entry")
	}
	return nil
}

func (s *historyStore) List(ctx context.Context, key core.ID) ([]quiz.Entry, error) {
	var rows []historyRow
	q := s.db.Rebind(`
		SELECT exam_id, date, score, total, created_at
		FROM exam_history
		WHERE owner_key = ?
		ORDER BY id`)
	if err := s.db.SelectContext(ctx, &rows, q, key.String()); err != nil {
		return nil, errors.Wrap(err, "selecting history entries")
	}

	entries := make([]quiz.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, quiz.Entry{
			ExamID:    core.ID(r.ExamID),
			Date:      r.Date,
			Score:     r.Score,
			Total:     r.Total,
			CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
		})
	}
	return entries, nil
}

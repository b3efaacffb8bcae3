package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/errs"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Sort keys accepted by Search.
const (
	SortByStartDate   = "start_date"
	SortByTotalAmount = "total_amount"
	SortByCreatedAt   = "created_at"
)

var sortColumns = map[string]string{
	SortByStartDate:   "r.start_date",
	SortByTotalAmount: "r.total_amount",
	SortByCreatedAt:   "r.created_at",
}

// IsSortKey reports whether key names a sortable column.
func IsSortKey(key string) bool {
	_, ok := sortColumns[key]
	return ok
}

type ReservationFilter struct {
	Term          string
	Status        *entity.ReservationStatus
	StartDateFrom *time.Time
	StartDateTo   *time.Time
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	SortBy        string
	Descending    bool
	Limit         int
	Offset        int
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (f ReservationFilter) where() sq.And {
	conds := sq.And{}

	if term := strings.TrimSpace(f.Term); term != "" {
		like := "%" + escapeLike(term) + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"c.first_name || ' ' || c.last_name": like},
			sq.ILike{"v.brand": like},
			sq.ILike{"v.model": like},
			sq.ILike{"v.license_plate": like},
		})
	}
	if f.Status != nil {
		conds = append(conds, sq.Eq{"r.status": string(*f.Status)})
	}
	if f.StartDateFrom != nil {
		conds = append(conds, sq.GtOrEq{"r.start_date": *f.StartDateFrom})
	}
	if f.StartDateTo != nil {
		conds = append(conds, sq.LtOrEq{"r.start_date": *f.StartDateTo})
	}
	if f.MinAmount != nil {
		conds = append(conds, sq.GtOrEq{"r.total_amount": *f.MinAmount})
	}
	if f.MaxAmount != nil {
		conds = append(conds, sq.LtOrEq{"r.total_amount": *f.MaxAmount})
	}

	return conds
}

func (f ReservationFilter) orderBy() (string, error) {
	key := f.SortBy
	if key == "" {
		key = SortByCreatedAt
	}
	column, ok := sortColumns[key]
	if !ok {
		return "", errs.InvalidInput("unknown sort key %q", f.SortBy)
	}

	dir := "ASC"
	if f.Descending {
		dir = "DESC"
	}
	// id breaks ties so pages stay stable
	return fmt.Sprintf("%s %s, r.id %s", column, dir, dir), nil
}

func (f ReservationFilter) selectQuery() (string, []any, error) {
	orderBy, err := f.orderBy()
	if err != nil {
		return "", nil, err
	}

	q := qb.Select(reservationDetailColumns).
		From(reservationDetailFrom).
		Where(f.where()).
		OrderBy(orderBy)
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	}

	return q.ToSql()
}

func (f ReservationFilter) countQuery() (string, []any, error) {
	return qb.Select("COUNT(*)").
		From(reservationDetailFrom).
		Where(f.where()).
		ToSql()
}

func (r *reservationRepository) Search(ctx context.Context, filter ReservationFilter) ([]*entity.ReservationDetail, int64, error) {
	query, args, err := filter.selectQuery()
	if err != nil {
		return nil, 0, err
	}
	countQuery, countArgs, err := filter.countQuery()
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.log.Error("Failed to count reservation search", zap.Error(err))
		return nil, 0, fmt.Errorf("count reservation search: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to search reservations", zap.Error(err), zap.String("term", filter.Term))
		return nil, 0, fmt.Errorf("search reservations: %w", err)
	}

	details, err := collectDetails(rows)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

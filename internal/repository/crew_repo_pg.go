package repository

import (
	"context"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CrewRepository interface {
	CrewByRole(ctx context.Context, role domain.CrewRole, trainedOnly bool) ([]domain.CrewMember, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.CrewMember, error)
	Create(ctx context.Context, member *domain.CrewMember) error
}

type PGCrewRepository struct {
	db *pgxpool.Pool
}

func NewCrewRepository(db *pgxpool.Pool) CrewRepository {
	return &PGCrewRepository{db: db}
}

func (r *PGCrewRepository) CrewByRole(ctx context.Context, role domain.CrewRole, trainedOnly bool) ([]domain.CrewMember, error) {
	query := `SELECT id, full_name, role, long_haul_trained FROM crew_members WHERE role=$1`
	if trainedOnly {
		query += ` AND long_haul_trained`
	}
	query += ` ORDER BY long_haul_trained DESC, id`

	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]domain.CrewMember, 0)
	for rows.Next() {
		var m domain.CrewMember
		if err := rows.Scan(&m.ID, &m.FullName, &m.Role, &m.LongHaulTrained); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PGCrewRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.CrewMember, error) {
	rows, err := r.db.Query(ctx, `SELECT id, full_name, role, long_haul_trained FROM crew_members WHERE id=ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]domain.CrewMember, 0, len(ids))
	for rows.Next() {
		var m domain.CrewMember
		if err := rows.Scan(&m.ID, &m.FullName, &m.Role, &m.LongHaulTrained); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PGCrewRepository) Create(ctx context.Context, member *domain.CrewMember) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO crew_members (full_name, role, long_haul_trained) VALUES ($1, $2, $3)
		RETURNING id`,
		member.FullName, member.Role, member.LongHaulTrained).Scan(&member.ID)
}

var _ CrewRepository = (*PGCrewRepository)(nil)

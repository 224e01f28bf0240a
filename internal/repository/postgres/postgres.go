package postgres

import (
	"database/sql"

	_ "github.com/lib/pq"

	"evfleet-ops-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.OrderRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:              db,
		OrderRepository: NewOrderRepository(db),
	}
}

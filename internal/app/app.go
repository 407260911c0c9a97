package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hrutik5321/pms/internal/auth"
	"github.com/hrutik5321/pms/internal/db"
	"github.com/hrutik5321/pms/internal/product"
)

// Store is everything the screens need from the database.
type Store interface {
	Authenticate(ctx context.Context, username, password string) error
	List(ctx context.Context) (db.Table, error)
	Find(ctx context.Context, id string) (db.Table, error)
	IDs(ctx context.Context) ([]string, error)
	Columns(ctx context.Context) ([]db.Column, error)
	Add(ctx context.Context, values db.Criteria) error
	Update(ctx context.Context, id string, values db.Criteria) error
}

type store struct {
	*product.Catalog
	p db.Provider
}

func (s store) Authenticate(ctx context.Context, username, password string) error {
	return auth.Authenticate(ctx, s.p, username, password)
}

// NewStore backs the screens with the login and product tables of p.
func NewStore(p db.Provider) Store {
	return store{Catalog: product.NewCatalog(p), p: p}
}

func New(s Store) tea.Model {
	return initialModel(s)
}

func NewProgram(s Store) *tea.Program {
	return tea.NewProgram(New(s), tea.WithAltScreen())
}

package pgsql

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/bodega_ledger/internal/apperrors"
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bodega_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/bodega_ledger/pkg/database"
)

// SnapshotRepositoryTestSuite runs against the database named by PGSQL_URL.
type SnapshotRepositoryTestSuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo portsrepo.Store
	ctx  context.Context
}

func TestSnapshotRepositorySuite(t *testing.T) {
	if os.Getenv("PGSQL_URL") == "" {
		t.Skip("PGSQL_URL not set")
	}
	suite.Run(t, new(SnapshotRepositoryTestSuite))
}

func (s *SnapshotRepositoryTestSuite) SetupSuite() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	url := os.Getenv("PGSQL_URL")
	s.Require().NoError(database.RunMigrations(url, "file://../../../../migrations", logger))

	pool, err := database.NewPgxPool(s.ctx, url, logger)
	s.Require().NoError(err)
	s.pool = pool
	s.repo = NewSnapshotRepository(pool)
}

func (s *SnapshotRepositoryTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *SnapshotRepositoryTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `DELETE FROM ledger_snapshots;`)
	s.Require().NoError(err)
}

func (s *SnapshotRepositoryTestSuite) TestEmptyStore() {
	snapshot, err := s.repo.LoadSnapshot(s.ctx)
	s.Require().NoError(err)
	s.Empty(snapshot)

	record, err := s.repo.LoadSession(s.ctx)
	s.Require().NoError(err)
	s.Nil(record)
}

func (s *SnapshotRepositoryTestSuite) TestSnapshotOverwrite() {
	date := time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC)
	ledger := domain.NewTenantLedger(domain.User{Username: "ana", Password: "x"}, 3)
	ledger.Sales = append(ledger.Sales, domain.Sale{
		SaleID: "s1", Date: date, PaymentMethod: domain.PaymentCash,
		Total: decimal.RequireFromString("7.50"),
		Items: []domain.SaleItem{{ProductID: "p1", ProductName: "Pan", Quantity: 3, PriceAtSale: decimal.RequireFromString("2.50")}},
	})

	s.Require().NoError(s.repo.SaveSnapshot(s.ctx, domain.Snapshot{"a": ledger}))
	s.Require().NoError(s.repo.SaveSnapshot(s.ctx, domain.Snapshot{"a": ledger, "b": domain.NewTenantLedger(domain.User{Username: "b", Password: "y"}, 1)}))

	loaded, err := s.repo.LoadSnapshot(s.ctx)
	s.Require().NoError(err)
	s.Len(loaded, 2)
	s.Require().Len(loaded["a"].Sales, 1)
	s.True(loaded["a"].Sales[0].Date.Equal(date))
	s.True(loaded["a"].Sales[0].Total.Equal(decimal.RequireFromString("7.5")))
}

func (s *SnapshotRepositoryTestSuite) TestSessionSlot() {
	record := domain.NewSessionRecord(domain.OperatorPrincipal{Username: "superuser"})
	s.Require().NoError(s.repo.SaveSession(s.ctx, record))

	loaded, err := s.repo.LoadSession(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(loaded)
	s.Equal(record, *loaded)

	s.Require().NoError(s.repo.ClearSession(s.ctx))
	loaded, err = s.repo.LoadSession(s.ctx)
	s.Require().NoError(err)
	s.Nil(loaded)
}

func (s *SnapshotRepositoryTestSuite) TestFailedWriteKeepsPreviousSnapshot() {
	first := domain.Snapshot{"a": domain.NewTenantLedger(domain.User{Username: "ana", Password: "x"}, 1)}
	s.Require().NoError(s.repo.SaveSnapshot(s.ctx, first))

	boom := apperrors.NewInternalServerError("boom")
	err := withTx(s.ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(s.ctx, `UPDATE ledger_snapshots SET payload = '{}'::jsonb WHERE slot = $1;`, slotData); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	loaded, err := s.repo.LoadSnapshot(s.ctx)
	s.Require().NoError(err)
	s.Contains(loaded, "a")
}

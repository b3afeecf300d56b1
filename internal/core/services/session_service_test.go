package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/bodega_ledger/internal/adapters/memory"
	"github.com/SscSPs/bodega_ledger/internal/apperrors"
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/bodega_ledger/internal/core/ports/services"
	"github.com/SscSPs/bodega_ledger/internal/core/services"
	"github.com/SscSPs/bodega_ledger/internal/dto"
	"github.com/SscSPs/bodega_ledger/internal/platform/config"
	"github.com/SscSPs/bodega_ledger/internal/platform/metrics"
)

func testConfig() *config.Config {
	return &config.Config{
		StoreBackend:     config.BackendMemory,
		OperatorUsername: "superuser",
		OperatorPassword: "password",
		SalePolicy:       domain.SalePolicyLenient,
	}
}

type SessionServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memory.Store
	metrics   *metrics.LedgerMetrics
	container *portssvc.ServiceContainer
	session   portssvc.SessionSvcFacade

	customerID string
}

func TestSessionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceTestSuite))
}

func (suite *SessionServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.New()
	suite.metrics = metrics.NewLedgerMetrics(prometheus.NewRegistry())
	suite.restart()

	suite.login("superuser", "password")
	_, err := suite.session.CreateTenant(suite.ctx, dto.CreateTenantRequest{
		TenantID: tenantID, AdminUsername: "ana", AdminPassword: "secret", MaxUsers: 3,
	})
	suite.Require().NoError(err)

	suite.login("ana", "secret")
	suite.Require().NoError(suite.session.AddUser(suite.ctx, domain.User{Username: "luis", Password: "l1", Role: domain.RoleStaff}))
	customer, err := suite.session.AddCustomer(suite.ctx, dto.CreateCustomerRequest{Name: "Rosa", Username: "rosa", Password: "r1"})
	suite.Require().NoError(err)
	suite.customerID = customer.CustomerID
	suite.Require().NoError(suite.session.Logout(suite.ctx))
}

// restart rebuilds every service on the same store, as a new process would.
func (suite *SessionServiceTestSuite) restart() {
	container, err := services.NewServiceContainer(suite.ctx, testConfig(), suite.store, suite.metrics)
	suite.Require().NoError(err)
	suite.container = container
	suite.session = container.Session
}

func (suite *SessionServiceTestSuite) login(username, password string) {
	ok, err := suite.session.Login(suite.ctx, username, password)
	suite.Require().NoError(err)
	suite.Require().True(ok, "login %s", username)
}

func (suite *SessionServiceTestSuite) TestLoginResolvesEachTier() {
	cases := []struct {
		username, password string
		kind               domain.PrincipalKind
	}{
		{"superuser", "password", domain.KindOperator},
		{"ana", "secret", domain.KindTenant},
		{"luis", "l1", domain.KindTenant},
		{"rosa", "r1", domain.KindCustomer},
	}
	for _, tc := range cases {
		suite.login(tc.username, tc.password)
		p, ok := suite.session.Current(suite.ctx)
		suite.Require().True(ok)
		suite.Equal(tc.kind, p.Kind(), tc.username)
		if tenant, scoped := domain.ScopedTenantID(p); scoped {
			suite.Equal(tenantID, tenant)
		}
	}
	// SetupTest logged in ana once already
	suite.Equal(float64(3), testutil.ToFloat64(suite.metrics.LoginsTotal.WithLabelValues("tenant")))
}

func (suite *SessionServiceTestSuite) TestFailedLoginKeepsPrincipal() {
	suite.login("ana", "secret")

	for _, creds := range [][2]string{{"ana", "SECRET"}, {"Ana", "secret"}, {"nobody", "x"}, {"rosa", "secret"}} {
		ok, err := suite.session.Login(suite.ctx, creds[0], creds[1])
		suite.NoError(err)
		suite.False(ok)
	}

	p, ok := suite.session.Current(suite.ctx)
	suite.Require().True(ok)
	tp := p.(domain.TenantPrincipal)
	suite.Equal("ana", tp.User.Username)
	suite.GreaterOrEqual(testutil.ToFloat64(suite.metrics.LoginsTotal.WithLabelValues("failed")), float64(4))
}

func (suite *SessionServiceTestSuite) TestLogoutIsUnconditional() {
	suite.Require().NoError(suite.session.Logout(suite.ctx))
	suite.login("rosa", "r1")
	suite.Require().NoError(suite.session.Logout(suite.ctx))

	_, ok := suite.session.Current(suite.ctx)
	suite.False(ok)
	record, err := suite.store.LoadSession(suite.ctx)
	suite.Require().NoError(err)
	suite.Nil(record)
}

func (suite *SessionServiceTestSuite) TestSessionSurvivesRestart() {
	suite.login("luis", "l1")
	suite.restart()

	p, ok := suite.session.Current(suite.ctx)
	suite.Require().True(ok)
	tp, isTenant := p.(domain.TenantPrincipal)
	suite.Require().True(isTenant)
	suite.Equal("luis", tp.User.Username)
	suite.Equal(domain.RoleStaff, tp.User.Role)

	products, err := suite.session.ListProducts(suite.ctx, dto.ProductFilter{})
	suite.Require().NoError(err)
	suite.Empty(products)
}

func (suite *SessionServiceTestSuite) TestDanglingTenantForcesLogout() {
	suite.login("rosa", "r1")

	// Storage edited out of band: the tenant disappears.
	snapshot, err := suite.store.LoadSnapshot(suite.ctx)
	suite.Require().NoError(err)
	delete(snapshot, tenantID)
	suite.Require().NoError(suite.store.SaveSnapshot(suite.ctx, snapshot))
	suite.restart()

	_, ok := suite.session.Current(suite.ctx)
	suite.False(ok)
	record, err := suite.store.LoadSession(suite.ctx)
	suite.Require().NoError(err)
	suite.Nil(record)

	_, err = suite.session.Statement(suite.ctx)
	suite.ErrorIs(err, apperrors.ErrNoSession)
}

func (suite *SessionServiceTestSuite) TestAuthorizationMatrix() {
	calls := map[string]func() error{
		"create-tenant": func() error {
			_, err := suite.session.CreateTenant(suite.ctx, dto.CreateTenantRequest{TenantID: "x", AdminUsername: "x", AdminPassword: "x", MaxUsers: 1})
			return err
		},
		"list-tenants": func() error { _, err := suite.session.ListTenants(suite.ctx); return err },
		"products":     func() error { _, err := suite.session.ListProducts(suite.ctx, dto.ProductFilter{}); return err },
		"add-user": func() error {
			return suite.session.AddUser(suite.ctx, domain.User{Username: "nuevo", Password: "p", Role: domain.RoleStaff})
		},
		"users":     func() error { _, err := suite.session.ListUsers(suite.ctx); return err },
		"statement": func() error { _, err := suite.session.Statement(suite.ctx); return err },
	}

	matrix := []struct {
		login   [2]string
		allowed []string
	}{
		{[2]string{"superuser", "password"}, []string{"create-tenant", "list-tenants"}},
		{[2]string{"ana", "secret"}, []string{"products", "add-user", "users"}},
		{[2]string{"luis", "l1"}, []string{"products"}},
		{[2]string{"rosa", "r1"}, []string{"statement"}},
	}

	for _, row := range matrix {
		suite.login(row.login[0], row.login[1])
		allowed := make(map[string]bool)
		for _, name := range row.allowed {
			allowed[name] = true
		}
		for name, fn := range calls {
			err := fn()
			if allowed[name] {
				suite.NoError(err, "%s should be allowed to %s", row.login[0], name)
			} else {
				suite.ErrorIs(err, apperrors.ErrForbidden, "%s should be denied %s", row.login[0], name)
			}
		}
	}

	suite.Require().NoError(suite.session.Logout(suite.ctx))
	for name, fn := range calls {
		suite.ErrorIs(fn(), apperrors.ErrNoSession, name)
	}
}

func (suite *SessionServiceTestSuite) TestAddCustomerRejectsCaseInsensitiveDuplicate() {
	suite.login("luis", "l1")

	_, err := suite.session.AddCustomer(suite.ctx, dto.CreateCustomerRequest{Name: "Otra Rosa", Username: " ROSA ", Password: "x"})
	suite.ErrorIs(err, apperrors.ErrDuplicateUsername)

	customers, err := suite.session.ListCustomers(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(customers, 1)
}

func (suite *SessionServiceTestSuite) TestStatementShowsFreshBalanceAndSaleDetails() {
	suite.login("ana", "secret")
	product, err := suite.session.AddProduct(suite.ctx, dto.CreateProductRequest{Name: "Arroz", Price: dec("10.00"), Stock: 5})
	suite.Require().NoError(err)

	// The customer is logged in while the shop records the purchase, so the balance in
	// the session copy is stale.
	suite.login("rosa", "r1")
	sale, err := suite.container.Ledger.RecordSale(suite.ctx, tenantID, dto.RecordSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: product.ProductID, Quantity: 2}},
		PaymentMethod: domain.PaymentCredit,
		CustomerID:    &suite.customerID,
	})
	suite.Require().NoError(err)
	_, err = suite.container.Ledger.RecordPayment(suite.ctx, tenantID, suite.customerID, dec("5.00"))
	suite.Require().NoError(err)

	statement, err := suite.session.Statement(suite.ctx)
	suite.Require().NoError(err)

	suite.Equal(tenantID, statement.TenantID)
	suite.True(statement.Customer.Balance.Equal(dec("15.00")))
	suite.Require().Len(statement.Entries, 2)
	suite.Equal(domain.Payment, statement.Entries[0].Transaction.Type)
	suite.Nil(statement.Entries[0].Sale)
	suite.Equal(domain.Purchase, statement.Entries[1].Transaction.Type)
	suite.Require().NotNil(statement.Entries[1].Sale)
	suite.Equal(sale.SaleID, statement.Entries[1].Sale.SaleID)
	suite.Equal("Arroz", statement.Entries[1].Sale.Items[0].ProductName)
}

func (suite *SessionServiceTestSuite) TestTenantScopeIsCapturedAtLogin() {
	suite.login("superuser", "password")
	_, err := suite.session.CreateTenant(suite.ctx, dto.CreateTenantRequest{TenantID: "bodega-2", AdminUsername: "zoe", AdminPassword: "z", MaxUsers: 1})
	suite.Require().NoError(err)

	suite.login("zoe", "z")
	_, err = suite.session.AddProduct(suite.ctx, dto.CreateProductRequest{Name: "Pan", Price: dec("0.20"), Stock: 100})
	suite.Require().NoError(err)

	// A customer id of another tenant is unknown here.
	_, err = suite.session.RecordPayment(suite.ctx, suite.customerID, dec("1"))
	suite.ErrorIs(err, apperrors.ErrCustomerNotFound)

	suite.login("ana", "secret")
	products, err := suite.session.ListProducts(suite.ctx, dto.ProductFilter{})
	suite.Require().NoError(err)
	suite.Empty(products)
}

// --- restore and persistence failures (mock store) ---

func TestNewSessionService_DiscardsUnreadableRecord(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	store.On("LoadSnapshot", mock.Anything).Return(domain.Snapshot{}, nil)
	store.On("LoadSession", mock.Anything).Return(&domain.SessionRecord{Type: "admin"}, nil)
	store.On("ClearSession", mock.Anything).Return(nil).Once()

	container, err := services.NewServiceContainer(ctx, testConfig(), store, nil)
	require.NoError(t, err)

	_, ok := container.Session.Current(ctx)
	assert.False(t, ok)
	store.AssertExpectations(t)
}

func TestNewSessionService_LoadFailure(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	store.On("LoadSnapshot", mock.Anything).Return(domain.Snapshot{}, nil)
	store.On("LoadSession", mock.Anything).Return(nil, errors.New("io"))

	_, err := services.NewServiceContainer(ctx, testConfig(), store, nil)
	assert.Error(t, err)
}

func TestLogin_SaveFailureKeepsPreviousPrincipal(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	record := domain.NewSessionRecord(domain.OperatorPrincipal{Username: "superuser"})
	store.On("LoadSnapshot", mock.Anything).Return(domain.Snapshot{}, nil)
	store.On("LoadSession", mock.Anything).Return(&record, nil)
	store.On("SaveSession", mock.Anything, mock.Anything).Return(apperrors.NewInternalServerError("write failed"))

	container, err := services.NewServiceContainer(ctx, testConfig(), store, nil)
	require.NoError(t, err)

	ok, err := container.Session.Login(ctx, "superuser", "password")
	assert.False(t, ok)
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	p, current := container.Session.Current(ctx)
	require.True(t, current)
	assert.Equal(t, domain.KindOperator, p.Kind())
}

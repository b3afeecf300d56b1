package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/bodega_ledger/internal/apperrors"
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/bodega_ledger/internal/core/ports/services"
	"github.com/SscSPs/bodega_ledger/internal/dto"
	"github.com/SscSPs/bodega_ledger/internal/platform/metrics"
	"github.com/SscSPs/bodega_ledger/internal/utils/accounting"
	"github.com/SscSPs/bodega_ledger/internal/utils/pagination"
)

// ledgerService implements the per-tenant ledger operations. It trusts its caller:
// role and scope checks happen in the session service.
type ledgerService struct {
	BaseService
	registry portssvc.RegistrySvcFacade
	policy   domain.SalePolicy
	metrics  *metrics.LedgerMetrics
	now      func() time.Time
}

// NewLedgerService creates a new LedgerService on top of the registry.
func NewLedgerService(registry portssvc.RegistrySvcFacade, policy domain.SalePolicy, m *metrics.LedgerMetrics) portssvc.LedgerSvcFacade {
	if policy == "" {
		policy = domain.SalePolicyLenient
	}
	return &ledgerService{
		registry: registry,
		policy:   policy,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// RecordSale commits a checkout. Under the lenient policy stock may go negative and
// lines for unknown products are kept with the caller's snapshot but move no stock.
func (s *ledgerService) RecordSale(ctx context.Context, tenantID string, req dto.RecordSaleRequest) (*domain.Sale, error) {
	if len(req.Items) == 0 {
		return nil, apperrors.ErrEmptySale
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var sale domain.Sale
	err := s.registry.Update(ctx, tenantID, func(ledger *domain.TenantLedger) error {
		customerIdx := -1
		if req.PaymentMethod == domain.PaymentCredit {
			if req.CustomerID == nil || *req.CustomerID == "" {
				return apperrors.ErrCustomerRequired
			}
			customerIdx = ledger.CustomerIndex(*req.CustomerID)
			if customerIdx < 0 {
				return fmt.Errorf("%w: customer %s does not exist", apperrors.ErrCustomerRequired, *req.CustomerID)
			}
		}

		if s.policy == domain.SalePolicyStrict {
			if err := checkAvailability(ledger, req.Items); err != nil {
				return err
			}
		}

		items := make([]domain.SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			idx := ledger.ProductIndex(line.ProductID)
			if idx < 0 {
				items = append(items, unknownProductItem(line))
				continue
			}
			product := &ledger.Products[idx]
			items = append(items, domain.SaleItem{
				ProductID:   product.ProductID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				PriceAtSale: product.Price,
			})
			product.Stock -= line.Quantity
		}

		sale = domain.Sale{
			SaleID:        uuid.NewString(),
			Date:          s.now(),
			Items:         items,
			Total:         domain.SaleTotal(items),
			PaymentMethod: req.PaymentMethod,
		}

		if customerIdx >= 0 {
			customer := &ledger.Customers[customerIdx]
			customerID := customer.CustomerID
			saleID := sale.SaleID
			sale.CustomerID = &customerID
			txn := domain.Transaction{
				TransactionID: uuid.NewString(),
				CustomerID:    customerID,
				Date:          sale.Date,
				Type:          domain.Purchase,
				Amount:        accounting.SignedAmount(domain.Purchase, sale.Total),
				SaleID:        &saleID,
			}
			customer.Balance = customer.Balance.Add(txn.Amount)
			ledger.Transactions = append(ledger.Transactions, txn)
		}

		ledger.Sales = append(ledger.Sales, sale)
		return nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Sale rejected",
			slog.String("tenant_id", tenantID),
			slog.String("payment_method", string(req.PaymentMethod)))
		return nil, err
	}

	s.metrics.ObserveSale(string(sale.PaymentMethod), sale.Total)
	s.LogInfo(ctx, "Sale recorded",
		slog.String("tenant_id", tenantID),
		slog.String("sale_id", sale.SaleID),
		slog.String("payment_method", string(sale.PaymentMethod)),
		slog.String("total", sale.Total.String()))
	return &sale, nil
}

// checkAvailability enforces the strict policy: every product must exist and have
// enough stock for the summed quantity of all its lines.
func checkAvailability(ledger *domain.TenantLedger, lines []dto.SaleItemRequest) error {
	demand := make(map[string]int, len(lines))
	order := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, seen := demand[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		demand[line.ProductID] += line.Quantity
	}
	for _, productID := range order {
		idx := ledger.ProductIndex(productID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", apperrors.ErrProductNotFound, productID)
		}
		if p := ledger.Products[idx]; p.Stock < demand[productID] {
			return fmt.Errorf("%w: %s has %d, requested %d", apperrors.ErrInsufficientStock, p.Name, p.Stock, demand[productID])
		}
	}
	return nil
}

func unknownProductItem(line dto.SaleItemRequest) domain.SaleItem {
	item := domain.SaleItem{
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Quantity:    line.Quantity,
		PriceAtSale: decimal.Zero,
	}
	if item.ProductName == "" {
		item.ProductName = line.ProductID
	}
	if line.UnitPrice != nil {
		item.PriceAtSale = *line.UnitPrice
	}
	return item
}

// GetSale retrieves a sale by id.
func (s *ledgerService) GetSale(ctx context.Context, tenantID string, saleID string) (*domain.Sale, error) {
	ledger, err := s.registry.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for i := range ledger.Sales {
		if ledger.Sales[i].SaleID == saleID {
			sale := ledger.Sales[i]
			return &sale, nil
		}
	}
	return nil, fmt.Errorf("%w: sale %s", apperrors.ErrNotFound, saleID)
}

// ListSales returns one page of sales, newest first.
func (s *ledgerService) ListSales(ctx context.Context, tenantID string, params dto.ListSalesParams) (*dto.ListSalesResponse, error) {
	ledger, err := s.registry.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	sales := newestFirst(ledger.Sales, func(sale domain.Sale) time.Time { return sale.Date })

	start := 0
	if params.NextToken != nil && *params.NextToken != "" {
		tokenDate, tokenID, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		start = len(sales)
		for i, sale := range sales {
			if sale.SaleID == tokenID {
				start = i + 1
				break
			}
			if sale.Date.Before(tokenDate) {
				start = i
				break
			}
		}
	}

	limit := pagination.NormalizeLimit(params.Limit)
	end := start + limit
	if end > len(sales) {
		end = len(sales)
	}

	resp := &dto.ListSalesResponse{Sales: sales[start:end]}
	if end < len(sales) {
		last := sales[end-1]
		token := pagination.EncodeToken(last.Date, last.SaleID)
		resp.NextToken = &token
	}
	return resp, nil
}

// AddProduct adds a product with a fresh id.
func (s *ledgerService) AddProduct(ctx context.Context, tenantID string, req dto.CreateProductRequest) (*domain.Product, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	product := domain.Product{
		ProductID: uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Price:     req.Price,
		Stock:     req.Stock,
		Category:  strings.TrimSpace(req.Category),
		ImageURL:  req.ImageURL,
	}
	err := s.registry.Update(ctx, tenantID, func(ledger *domain.TenantLedger) error {
		ledger.Products = append(ledger.Products, product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Product added", slog.String("tenant_id", tenantID), slog.String("product_id", product.ProductID))
	return &product, nil
}

// UpdateProduct replaces the stored product with the same id. An unknown id is a
// successful no-op.
func (s *ledgerService) UpdateProduct(ctx context.Context, tenantID string, product domain.Product) (*domain.Product, error) {
	if product.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", apperrors.ErrValidation)
	}
	if product.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", apperrors.ErrValidation)
	}

	ledger, err := s.registry.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if ledger.ProductIndex(product.ProductID) < 0 {
		s.LogDebug(ctx, "Product update ignored, no such product",
			slog.String("tenant_id", tenantID), slog.String("product_id", product.ProductID))
		return &product, nil
	}

	err = s.registry.Update(ctx, tenantID, func(ledger *domain.TenantLedger) error {
		if idx := ledger.ProductIndex(product.ProductID); idx >= 0 {
			ledger.Products[idx] = product
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Product updated", slog.String("tenant_id", tenantID), slog.String("product_id", product.ProductID))
	return &product, nil
}

// ListProducts returns the catalog newest first, filtered by category, name and
// availability.
func (s *ledgerService) ListProducts(ctx context.Context, tenantID string, filter dto.ProductFilter) ([]domain.Product, error) {
	ledger, err := s.registry.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	products := make([]domain.Product, 0, len(ledger.Products))
	for i := len(ledger.Products) - 1; i >= 0; i-- {
		p := ledger.Products[i]
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if filter.InStockOnly && !p.InStock() {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// ListCategories returns the distinct non-empty categories, sorted.
func (s *ledgerService) ListCategories(ctx context.Context, tenantID string) ([]string, error) {
	ledger, err := s.registry.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	categories := []string{}
	for _, p := range ledger.Products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// AddCustomer opens a customer account with a zero balance.
func (s *ledgerService) AddCustomer(ctx context.Context, tenantID string, req dto.CreateCustomerRequest) (*domain.Customer, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	customer := domain.Customer{
		CustomerID: uuid.NewString(),
		Name:       strings.TrimSpace(req.Name),
		Username:   strings.TrimSpace(req.Username),
		Password:   strings.TrimSpace(req.Password),
		Balance:    decimal.Zero,
	}
	err := s.registry.Update(ctx, tenantID, func(ledger *domain.TenantLedger) error {
		ledger.Customers = append(ledger.Customers, customer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Customer added", slog.String("tenant_id", tenantID), slog.String("customer_id", customer.CustomerID))
	return &customer, nil
}

// RecordPayment lowers the customer's balance by amount. Overpayment is allowed and
// leaves a credit in the customer's favour.
func (s *ledgerService) RecordPayment(ctx context.Context, tenantID string, customerID string, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", apperrors.ErrInvalidAmount, amount.String())
	}

	var txn domain.Transaction
	err := s.registry.Update(ctx, tenantID, func(ledger *domain.TenantLedger) error {
		idx := ledger.CustomerIndex(customerID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", apperrors.ErrCustomerNotFound, customerID)
		}
		txn = domain.Transaction{
			TransactionID: uuid.NewString(),
			CustomerID:    customerID,
			Date:          s.now(),
			Type:          domain.Payment,
			Amount:        accounting.SignedAmount(domain.Payment, amount),
		}
		ledger.Customers[idx].Balance = ledger.Customers[idx].Balance.Add(txn.Amount)
		ledger.Transactions = append(ledger.Transactions, txn)
		return nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Payment rejected", slog.String("tenant_id", tenantID), slog.String("customer_id", customerID))
		return nil, err
	}

	s.metrics.ObservePayment(amount)
	s.LogInfo(ctx, "Payment recorded",
		slog.String("tenant_id", tenantID),
		slog.String("customer_id", customerID),
		slog.String("amount", amount.String()))
	return &txn, nil
}

// GetCustomer retrieves a customer by id.
func (s *ledgerService) GetCustomer(ctx context.Context, tenantID string, customerID string) (*domain.Customer, error) {
	ledger, err := s.registry.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	idx := ledger.CustomerIndex(customerID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrCustomerNotFound, customerID)
	}
	customer := ledger.Customers[idx]
	return &customer, nil
}

// ListCustomers returns every customer, newest first.
func (s *ledgerService) ListCustomers(ctx context.Context, tenantID string) ([]domain.Customer, error) {
	ledger, err := s.registry.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	customers := make([]domain.Customer, len(ledger.Customers))
	for i, c := range ledger.Customers {
		customers[len(customers)-1-i] = c
	}
	return customers, nil
}

// ListCustomerTransactions returns the customer's transactions newest first.
func (s *ledgerService) ListCustomerTransactions(ctx context.Context, tenantID string, customerID string) ([]domain.Transaction, error) {
	ledger, err := s.registry.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if ledger.CustomerIndex(customerID) < 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrCustomerNotFound, customerID)
	}

	own := make([]domain.Transaction, 0)
	for _, txn := range ledger.Transactions {
		if txn.CustomerID == customerID {
			own = append(own, txn)
		}
	}
	return newestFirst(own, func(txn domain.Transaction) time.Time { return txn.Date }), nil
}

// UsernameTaken reports whether a customer of the tenant already uses username,
// ignoring case and surrounding whitespace.
func (s *ledgerService) UsernameTaken(ctx context.Context, tenantID string, username string) (bool, error) {
	ledger, err := s.registry.Lookup(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return ledger.CustomerUsernameTaken(username), nil
}

// AddUser adds a staff or admin user within the tenant's capacity.
func (s *ledgerService) AddUser(ctx context.Context, tenantID string, user domain.User) error {
	if strings.TrimSpace(user.Username) == "" || strings.TrimSpace(user.Password) == "" {
		return fmt.Errorf("%w: username and password are required", apperrors.ErrValidation)
	}
	if !user.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, user.Role)
	}

	err := s.registry.Update(ctx, tenantID, func(ledger *domain.TenantLedger) error {
		if !ledger.CanAddUser() {
			return fmt.Errorf("%w: %d/%d", apperrors.ErrUserLimitReached, len(ledger.Users), ledger.MaxUsers)
		}
		if _, exists := ledger.FindUser(user.Username); exists {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateUsername, user.Username)
		}
		ledger.Users = append(ledger.Users, user)
		return nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "User creation rejected", slog.String("tenant_id", tenantID), slog.String("username", user.Username))
		return err
	}

	s.LogInfo(ctx, "User added",
		slog.String("tenant_id", tenantID),
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)))
	return nil
}

// ListUsers returns the tenant's users.
func (s *ledgerService) ListUsers(ctx context.Context, tenantID string) ([]domain.User, error) {
	ledger, err := s.registry.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ledger.Users, nil
}

// VerifyBalances returns every customer whose stored balance is not the sum of its
// transactions. An empty result means the ledger is consistent.
func (s *ledgerService) VerifyBalances(ctx context.Context, tenantID string) ([]dto.BalanceMismatch, error) {
	ledger, err := s.registry.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	mismatches := accounting.FindBalanceMismatches(ledger)
	if len(mismatches) > 0 {
		s.LogError(ctx, fmt.Errorf("%d balance mismatches", len(mismatches)), "Ledger inconsistent", slog.String("tenant_id", tenantID))
	}
	return mismatches, nil
}

// newestFirst returns a reversed copy of items (stored oldest first), stably sorted by
// descending date so equal timestamps keep reverse insertion order.
func newestFirst[T any](items []T, date func(T) time.Time) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	sort.SliceStable(out, func(i, j int) bool {
		return date(out[i]).After(date(out[j]))
	})
	return out
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/SscSPs/bodega_ledger/internal/apperrors"
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/bodega_ledger/internal/core/ports/services"
	"github.com/SscSPs/bodega_ledger/internal/dto"
	"github.com/SscSPs/bodega_ledger/internal/platform/config"
	"github.com/SscSPs/bodega_ledger/internal/utils/money"
)

var errUsage = errors.New("usage")

// sessionAnnotation marks commands that run against an open session controller.
const sessionAnnotation = "bodega/session"

type app struct {
	out     io.Writer
	cfg     *config.Config
	logger  *slog.Logger
	session portssvc.SessionSvcFacade

	registry *prometheus.Registry
	closers  []func()
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bodega",
		Short:         "Multi-tenant bodega ledger",
		Long:          "bodega keeps the catalog, credit accounts and sale history of every tenant shop.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return fmt.Errorf("%w: a command is required", errUsage)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[sessionAnnotation] == "" {
				return nil
			}
			return a.open(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		a.newLoginCmd(),
		a.leaf("logout", "End the current session", a.logout),
		a.leaf("whoami", "Show the current session", a.whoami),
		a.leaf("tenants", "List tenants (operator)", a.tenants),
		a.newCreateTenantCmd(),
		a.newAddProductCmd(),
		a.newUpdateProductCmd(),
		a.newProductsCmd(),
		a.leaf("categories", "List product categories", a.categories),
		a.newAddCustomerCmd(),
		a.leaf("customers", "List customers and balances", a.customers),
		a.newTransactionsCmd(),
		a.newSaleCmd(),
		a.newPayCmd(),
		a.newSalesCmd(),
		a.newAddUserCmd(),
		a.leaf("users", "List tenant users (admin)", a.users),
		a.leaf("statement", "Show your account (customer)", a.statement),
		a.leaf("verify", "Check balances against transactions", a.verify),
	)
	return root
}

// leaf builds a command that takes no positional arguments and needs a session.
func (a *app) leaf(use, short string, fn func(ctx context.Context, cmd *cobra.Command) error) *cobra.Command {
	return &cobra.Command{
		Use:         use,
		Short:       short,
		Args:        noArgs,
		Annotations: map[string]string{sessionAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return fn(cmd.Context(), cmd)
		},
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments, got %q", errUsage, cmd.Name(), args[0])
	}
	return nil
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

// --- session ---

func (a *app) newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "login <username> <password>",
		Short:       "Log in as the operator, a tenant user or a customer",
		Annotations: map[string]string{sessionAnnotation: "true"},
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("%w: login <username> <password>", errUsage)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.session.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.ErrInvalidCredentials
			}
			return a.whoami(cmd.Context(), cmd)
		},
	}
}

func (a *app) logout(ctx context.Context, _ *cobra.Command) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *app) whoami(ctx context.Context, _ *cobra.Command) error {
	p, ok := a.session.Current(ctx)
	if !ok {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	switch v := p.(type) {
	case domain.OperatorPrincipal:
		fmt.Fprintf(a.out, "Operator %s\n", v.Username)
	case domain.TenantPrincipal:
		fmt.Fprintf(a.out, "User %s (%s) of tenant %s\n", v.User.Username, v.User.Role, v.TenantID)
	case domain.CustomerPrincipal:
		fmt.Fprintf(a.out, "Customer %s of tenant %s\n", v.Customer.Name, v.TenantID)
	default:
		panic(fmt.Sprintf("bodega: unknown principal %T", p))
	}
	return nil
}

// --- operator ---

func (a *app) tenants(ctx context.Context, _ *cobra.Command) error {
	summaries, err := a.session.ListTenants(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "TENANT\tADMIN\tUSERS")
	for _, t := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\n", t.TenantID, t.AdminUsername, t.UserCount, t.MaxUsers)
	}
	return w.Flush()
}

func (a *app) newCreateTenantCmd() *cobra.Command {
	var req dto.CreateTenantRequest
	cmd := a.leaf("create-tenant", "Register a tenant (operator)", func(ctx context.Context, _ *cobra.Command) error {
		if _, err := a.session.CreateTenant(ctx, req); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Tenant %s created with admin %s.\n", req.TenantID, req.AdminUsername)
		return nil
	})
	cmd.Flags().StringVar(&req.TenantID, "id", "", "tenant id")
	cmd.Flags().StringVar(&req.AdminUsername, "admin", "", "admin username")
	cmd.Flags().StringVar(&req.AdminPassword, "password", "", "admin password")
	cmd.Flags().IntVar(&req.MaxUsers, "max-users", 1, "user capacity")
	return cmd
}

// --- catalog ---

func (a *app) newAddProductCmd() *cobra.Command {
	var (
		req   dto.CreateProductRequest
		price string
		image string
	)
	cmd := a.leaf("add-product", "Add a product to the catalog", func(ctx context.Context, _ *cobra.Command) error {
		var err error
		if req.Price, err = parseAmount(price); err != nil {
			return err
		}
		if image != "" {
			req.ImageURL = &image
		}

		product, err := a.session.AddProduct(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Product %s added: %s at %s.\n", product.ProductID, product.Name, money.Format(product.Price))
		return nil
	})
	cmd.Flags().StringVar(&req.Name, "name", "", "product name")
	cmd.Flags().StringVar(&price, "price", "0", "unit price")
	cmd.Flags().IntVar(&req.Stock, "stock", 0, "units in stock")
	cmd.Flags().StringVar(&req.Category, "category", "", "category")
	cmd.Flags().StringVar(&image, "image", "", "image URL")
	return cmd
}

// newUpdateProductCmd starts from the stored product and applies only the flags given.
func (a *app) newUpdateProductCmd() *cobra.Command {
	var (
		id, name, price, category, image string
		stock                            int
	)
	cmd := a.leaf("update-product", "Change a product by id", func(ctx context.Context, cmd *cobra.Command) error {
		if id == "" {
			return fmt.Errorf("%w: --id is required", errUsage)
		}

		products, err := a.session.ListProducts(ctx, dto.ProductFilter{})
		if err != nil {
			return err
		}
		product := domain.Product{ProductID: id}
		for _, p := range products {
			if p.ProductID == id {
				product = p
				break
			}
		}

		flags := cmd.Flags()
		if flags.Changed("name") {
			product.Name = name
		}
		if flags.Changed("price") {
			if product.Price, err = parseAmount(price); err != nil {
				return err
			}
		}
		if flags.Changed("stock") {
			product.Stock = stock
		}
		if flags.Changed("category") {
			product.Category = category
		}
		if flags.Changed("image") {
			product.ImageURL = &image
		}

		updated, err := a.session.UpdateProduct(ctx, product)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Product %s saved.\n", updated.ProductID)
		return nil
	})
	cmd.Flags().StringVar(&id, "id", "", "product id")
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().StringVar(&price, "price", "", "unit price")
	cmd.Flags().IntVar(&stock, "stock", 0, "units in stock")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().StringVar(&image, "image", "", "image URL")
	return cmd
}

func (a *app) newProductsCmd() *cobra.Command {
	var filter dto.ProductFilter
	cmd := a.leaf("products", "List the catalog, newest first", func(ctx context.Context, _ *cobra.Command) error {
		products, err := a.session.ListProducts(ctx, filter)
		if err != nil {
			return err
		}
		w := a.table()
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
		for _, p := range products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ProductID, p.Name, p.Category, money.Format(p.Price), p.Stock)
		}
		return w.Flush()
	})
	cmd.Flags().StringVar(&filter.Category, "category", "", "exact category")
	cmd.Flags().StringVar(&filter.Search, "search", "", "name contains")
	cmd.Flags().BoolVar(&filter.InStockOnly, "in-stock", false, "only products with stock")
	return cmd
}

func (a *app) categories(ctx context.Context, _ *cobra.Command) error {
	categories, err := a.session.ListCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Fprintln(a.out, c)
	}
	return nil
}

// --- customers ---

func (a *app) newAddCustomerCmd() *cobra.Command {
	var req dto.CreateCustomerRequest
	cmd := a.leaf("add-customer", "Open a customer account", func(ctx context.Context, _ *cobra.Command) error {
		customer, err := a.session.AddCustomer(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Customer %s added: %s.\n", customer.CustomerID, customer.Name)
		return nil
	})
	cmd.Flags().StringVar(&req.Name, "name", "", "customer name")
	cmd.Flags().StringVar(&req.Username, "username", "", "login username")
	cmd.Flags().StringVar(&req.Password, "password", "", "login password")
	return cmd
}

func (a *app) customers(ctx context.Context, _ *cobra.Command) error {
	customers, err := a.session.ListCustomers(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tUSERNAME\tBALANCE\t")
	for _, c := range dto.ToCustomerResponses(customers) {
		owes := ""
		if c.HasDebt {
			owes = "owes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.CustomerID, c.Name, c.Username, money.Format(c.Balance), owes)
	}
	return w.Flush()
}

func (a *app) newTransactionsCmd() *cobra.Command {
	var customerID string
	cmd := a.leaf("transactions", "List a customer's transactions, newest first", func(ctx context.Context, _ *cobra.Command) error {
		txns, err := a.session.ListCustomerTransactions(ctx, customerID)
		if err != nil {
			return err
		}
		w := a.table()
		fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tSALE")
		for _, t := range txns {
			sale := ""
			if t.SaleID != nil {
				sale = *t.SaleID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Date.Format("2006-01-02 15:04"), t.Type, money.Format(t.Amount), sale)
		}
		return w.Flush()
	})
	cmd.Flags().StringVar(&customerID, "customer", "", "customer id")
	return cmd
}

// --- sales ---

func (a *app) newSaleCmd() *cobra.Command {
	var (
		items      []string
		method     string
		customerID string
	)
	cmd := a.leaf("sale", "Record a sale", func(ctx context.Context, _ *cobra.Command) error {
		req := dto.RecordSaleRequest{PaymentMethod: domain.PaymentMethod(method)}
		for _, raw := range items {
			line, err := parseItem(raw)
			if err != nil {
				return err
			}
			req.Items = append(req.Items, line)
		}
		if customerID != "" {
			req.CustomerID = &customerID
		}

		sale, err := a.session.RecordSale(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Sale %s recorded: %s (%s).\n", sale.SaleID, money.Format(sale.Total), sale.PaymentMethod)
		return nil
	})
	cmd.Flags().StringArrayVar(&items, "item", nil, "cart line as <productId>:<quantity>, repeatable")
	cmd.Flags().StringVar(&method, "method", string(domain.PaymentCash), "cash or credit")
	cmd.Flags().StringVar(&customerID, "customer", "", "customer id for credit sales")
	return cmd
}

func parseItem(raw string) (dto.SaleItemRequest, error) {
	productID, qty, found := strings.Cut(raw, ":")
	if !found {
		return dto.SaleItemRequest{}, fmt.Errorf("%w: item %q must be <productId>:<quantity>", errUsage, raw)
	}
	quantity, err := strconv.Atoi(qty)
	if err != nil {
		return dto.SaleItemRequest{}, fmt.Errorf("%w: item %q has a bad quantity", errUsage, raw)
	}
	return dto.SaleItemRequest{ProductID: productID, Quantity: quantity}, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not an amount", errUsage, raw)
	}
	return amount, nil
}

func (a *app) newPayCmd() *cobra.Command {
	var customerID, amount string
	cmd := a.leaf("pay", "Record a customer payment", func(ctx context.Context, _ *cobra.Command) error {
		value, err := parseAmount(amount)
		if err != nil {
			return err
		}
		if _, err := a.session.RecordPayment(ctx, customerID, value); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Payment of %s recorded.\n", money.Format(value))
		return nil
	})
	cmd.Flags().StringVar(&customerID, "customer", "", "customer id")
	cmd.Flags().StringVar(&amount, "amount", "", "amount paid")
	return cmd
}

func (a *app) newSalesCmd() *cobra.Command {
	var (
		params dto.ListSalesParams
		next   string
	)
	cmd := a.leaf("sales", "List sales, newest first", func(ctx context.Context, _ *cobra.Command) error {
		if next != "" {
			params.NextToken = &next
		}

		page, err := a.session.ListSales(ctx, params)
		if err != nil {
			return err
		}
		w := a.table()
		fmt.Fprintln(w, "ID\tDATE\tMETHOD\tITEMS\tTOTAL")
		for _, s := range page.Sales {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.SaleID, s.Date.Format("2006-01-02 15:04"), s.PaymentMethod, len(s.Items), money.Format(s.Total))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if page.NextToken != nil {
			fmt.Fprintf(a.out, "next: %s\n", *page.NextToken)
		}
		return nil
	})
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "page size")
	cmd.Flags().StringVar(&next, "next", "", "token of the next page")
	return cmd
}

// --- users ---

func (a *app) newAddUserCmd() *cobra.Command {
	var (
		user domain.User
		role string
	)
	cmd := a.leaf("add-user", "Add a tenant user (admin)", func(ctx context.Context, _ *cobra.Command) error {
		user.Role = domain.UserRole(role)
		if err := a.session.AddUser(ctx, user); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "User %s added as %s.\n", user.Username, user.Role)
		return nil
	})
	cmd.Flags().StringVar(&user.Username, "username", "", "username")
	cmd.Flags().StringVar(&user.Password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStaff), "admin or staff")
	return cmd
}

func (a *app) users(ctx context.Context, _ *cobra.Command) error {
	users, err := a.session.ListUsers(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "USERNAME\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\n", u.Username, u.Role)
	}
	return w.Flush()
}

// --- customer view ---

func (a *app) statement(ctx context.Context, _ *cobra.Command) error {
	st, err := a.session.Statement(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s, balance %s\n", st.Customer.Name, money.Format(st.Customer.Balance))

	w := a.table()
	fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tDETAIL")
	for _, e := range st.Entries {
		detail := ""
		if e.Sale != nil {
			names := make([]string, 0, len(e.Sale.Items))
			for _, item := range e.Sale.Items {
				names = append(names, fmt.Sprintf("%dx %s", item.Quantity, item.ProductName))
			}
			detail = strings.Join(names, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Transaction.Date.Format("2006-01-02 15:04"), e.Transaction.Type, money.Format(e.Transaction.Amount), detail)
	}
	return w.Flush()
}

func (a *app) verify(ctx context.Context, _ *cobra.Command) error {
	mismatches, err := a.session.VerifyBalances(ctx)
	if err != nil {
		return err
	}
	if len(mismatches) == 0 {
		fmt.Fprintln(a.out, "All balances match their transactions.")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "CUSTOMER\tSTORED\tCOMPUTED")
	for _, m := range mismatches {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, money.Format(m.Stored), money.Format(m.Computed))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return fmt.Errorf("%d balance mismatches", len(mismatches))
}

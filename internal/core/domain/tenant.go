package domain

import "strings"

// TenantLedger is the aggregate root of one tenant: its catalog, customers, users and the
// append-only sale and transaction history.
type TenantLedger struct {
	Products     []Product     `json:"products"`
	Customers    []Customer    `json:"customers"`
	Sales        []Sale        `json:"sales"`        // Oldest first
	Transactions []Transaction `json:"transactions"` // Oldest first
	Users        []User        `json:"users"`
	MaxUsers     int           `json:"maxUsers"`
}

// NewTenantLedger returns an empty ledger whose only user is admin.
func NewTenantLedger(admin User, maxUsers int) TenantLedger {
	admin.Role = RoleAdmin
	return TenantLedger{
		Products:     []Product{},
		Customers:    []Customer{},
		Sales:        []Sale{},
		Transactions: []Transaction{},
		Users:        []User{admin},
		MaxUsers:     maxUsers,
	}
}

// Clone returns a deep copy that shares no slices with t.
func (t TenantLedger) Clone() TenantLedger {
	c := TenantLedger{
		Products:     make([]Product, len(t.Products)),
		Customers:    make([]Customer, len(t.Customers)),
		Sales:        make([]Sale, len(t.Sales)),
		Transactions: make([]Transaction, len(t.Transactions)),
		Users:        make([]User, len(t.Users)),
		MaxUsers:     t.MaxUsers,
	}
	copy(c.Products, t.Products)
	copy(c.Customers, t.Customers)
	copy(c.Transactions, t.Transactions)
	copy(c.Users, t.Users)
	for i, s := range t.Sales {
		items := make([]SaleItem, len(s.Items))
		copy(items, s.Items)
		s.Items = items
		c.Sales[i] = s
	}
	return c
}

// ProductIndex returns the position of the product with id, or -1.
func (t TenantLedger) ProductIndex(id string) int {
	for i := range t.Products {
		if t.Products[i].ProductID == id {
			return i
		}
	}
	return -1
}

// CustomerIndex returns the position of the customer with id, or -1.
func (t TenantLedger) CustomerIndex(id string) int {
	for i := range t.Customers {
		if t.Customers[i].CustomerID == id {
			return i
		}
	}
	return -1
}

// FindUser returns the user with the exact username.
func (t TenantLedger) FindUser(username string) (User, bool) {
	for _, u := range t.Users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// Admin returns the first admin user of the tenant.
func (t TenantLedger) Admin() (User, bool) {
	for _, u := range t.Users {
		if u.IsAdmin() {
			return u, true
		}
	}
	return User{}, false
}

// CustomerUsernameTaken reports whether a customer already uses username, ignoring case
// and surrounding whitespace.
func (t TenantLedger) CustomerUsernameTaken(username string) bool {
	needle := strings.ToLower(strings.TrimSpace(username))
	for _, c := range t.Customers {
		if strings.ToLower(c.Username) == needle {
			return true
		}
	}
	return false
}

// CanAddUser reports whether the capacity allows one more user.
func (t TenantLedger) CanAddUser() bool {
	return len(t.Users) < t.MaxUsers
}

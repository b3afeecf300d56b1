package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewTenantLedgerForcesAdmin(t *testing.T) {
	ledger := NewTenantLedger(User{Username: "ana", Password: "x", Role: RoleStaff}, 3)

	assert.Len(t, ledger.Users, 1)
	admin, ok := ledger.Admin()
	assert.True(t, ok)
	assert.Equal(t, "ana", admin.Username)
	assert.True(t, ledger.CanAddUser())
	assert.NotNil(t, ledger.Sales)
	assert.NotNil(t, ledger.Transactions)
}

func TestCloneSharesNothing(t *testing.T) {
	ledger := NewTenantLedger(User{Username: "ana", Password: "x"}, 2)
	ledger.Products = append(ledger.Products, Product{ProductID: "p1", Stock: 2})
	ledger.Sales = append(ledger.Sales, Sale{SaleID: "s1", Items: []SaleItem{{ProductID: "p1", Quantity: 1}}})

	c := ledger.Clone()
	c.Products[0].Stock = 99
	c.Sales[0].Items[0].Quantity = 99
	c.Users[0].Username = "other"

	assert.Equal(t, 2, ledger.Products[0].Stock)
	assert.Equal(t, 1, ledger.Sales[0].Items[0].Quantity)
	assert.Equal(t, "ana", ledger.Users[0].Username)

	snap := Snapshot{"a": ledger}.Clone()
	tenant := snap["a"]
	tenant.Products[0].Stock = 7
	assert.Equal(t, 2, ledger.Products[0].Stock)
}

func TestLookups(t *testing.T) {
	ledger := NewTenantLedger(User{Username: "ana", Password: "x"}, 1)
	ledger.Customers = append(ledger.Customers, Customer{CustomerID: "c1", Username: "Rosa"})
	ledger.Products = append(ledger.Products, Product{ProductID: "p1"})

	assert.Equal(t, 0, ledger.CustomerIndex("c1"))
	assert.Equal(t, -1, ledger.CustomerIndex("c2"))
	assert.Equal(t, 0, ledger.ProductIndex("p1"))
	assert.Equal(t, -1, ledger.ProductIndex("p2"))
	assert.True(t, ledger.CustomerUsernameTaken(" rosa "))
	assert.False(t, ledger.CustomerUsernameTaken("rosalia"))

	_, found := ledger.FindUser("ANA")
	assert.False(t, found, "user lookup is exact")
	assert.False(t, ledger.CanAddUser())
}

func TestSnapshotTenantIDsSorted(t *testing.T) {
	s := Snapshot{"c": {}, "a": {}, "b": {}}
	assert.Equal(t, []string{"a", "b", "c"}, s.TenantIDs())
}

func TestSaleTotalAndPolicy(t *testing.T) {
	items := []SaleItem{
		{Quantity: 2, PriceAtSale: decimal.RequireFromString("10.00")},
		{Quantity: 3, PriceAtSale: decimal.RequireFromString("0.10")},
	}
	assert.True(t, SaleTotal(items).Equal(decimal.RequireFromString("20.30")))
	assert.True(t, PaymentCredit.Valid())
	assert.False(t, PaymentMethod("barter").Valid())

	assert.Equal(t, SalePolicyStrict, ParseSalePolicy(" STRICT "))
	assert.Equal(t, SalePolicyLenient, ParseSalePolicy(""))
	assert.Equal(t, SalePolicyLenient, ParseSalePolicy("whatever"))
}

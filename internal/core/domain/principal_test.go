package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRecordRoundTrip(t *testing.T) {
	principals := []Principal{
		OperatorPrincipal{Username: "superuser"},
		TenantPrincipal{TenantID: "bodega-1", User: User{Username: "ana", Password: "x", Role: RoleAdmin}},
		CustomerPrincipal{TenantID: "bodega-1", Customer: Customer{CustomerID: "c1", Name: "Rosa", Username: "rosa", Password: "r", Balance: decimal.RequireFromString("3.5")}},
	}

	for _, p := range principals {
		raw, err := json.Marshal(NewSessionRecord(p))
		require.NoError(t, err)

		var record SessionRecord
		require.NoError(t, json.Unmarshal(raw, &record))
		got, err := record.Principal()
		require.NoError(t, err)
		assert.Equal(t, p.Kind(), got.Kind())

		wantTenant, wantScoped := ScopedTenantID(p)
		gotTenant, gotScoped := ScopedTenantID(got)
		assert.Equal(t, wantScoped, gotScoped)
		assert.Equal(t, wantTenant, gotTenant)
	}
}

func TestSessionRecordLayout(t *testing.T) {
	raw, err := json.Marshal(NewSessionRecord(TenantPrincipal{TenantID: "t1", User: User{Username: "ana", Password: "x", Role: RoleStaff}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"tenant","user":{"username":"ana","password":"x","role":"staff"},"tenantId":"t1"}`, string(raw))

	raw, err = json.Marshal(NewSessionRecord(OperatorPrincipal{Username: "superuser"}))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"superuser"`)
	assert.NotContains(t, string(raw), "tenantId")
}

func TestSessionRecordRejectsIncomplete(t *testing.T) {
	records := []SessionRecord{
		{Type: KindOperator},
		{Type: KindTenant, User: &User{Username: "ana"}},
		{Type: KindCustomer, TenantID: "t1"},
		{Type: "admin"},
	}
	for _, r := range records {
		_, err := r.Principal()
		assert.Error(t, err, "%+v", r)
	}
}

func TestScopedTenantID(t *testing.T) {
	_, scoped := ScopedTenantID(OperatorPrincipal{Username: "op"})
	assert.False(t, scoped)

	id, scoped := ScopedTenantID(CustomerPrincipal{TenantID: "t9"})
	assert.True(t, scoped)
	assert.Equal(t, "t9", id)
}

package domain

import "fmt"

// PrincipalKind discriminates the three principal variants.
type PrincipalKind string

const (
	KindOperator PrincipalKind = "superuser"
	KindTenant   PrincipalKind = "tenant"
	KindCustomer PrincipalKind = "customer"
)

// Principal is the identity behind a session. It is a closed set: the only
// implementations are OperatorPrincipal, TenantPrincipal and CustomerPrincipal, and
// consumers switch over them exhaustively.
type Principal interface {
	Kind() PrincipalKind
	isPrincipal()
}

// OperatorPrincipal is the platform operator. It has no tenant scope.
type OperatorPrincipal struct {
	Username string
}

// TenantPrincipal is a tenant user bound to the tenant it logged into.
type TenantPrincipal struct {
	TenantID string
	User     User
}

// CustomerPrincipal is an end-customer with read access to its own history.
type CustomerPrincipal struct {
	TenantID string
	Customer Customer
}

func (OperatorPrincipal) Kind() PrincipalKind { return KindOperator }
func (TenantPrincipal) Kind() PrincipalKind   { return KindTenant }
func (CustomerPrincipal) Kind() PrincipalKind { return KindCustomer }

func (OperatorPrincipal) isPrincipal() {}
func (TenantPrincipal) isPrincipal()   {}
func (CustomerPrincipal) isPrincipal() {}

// ScopedTenantID returns the tenant a principal is bound to. Operators have none.
func ScopedTenantID(p Principal) (string, bool) {
	switch v := p.(type) {
	case OperatorPrincipal:
		return "", false
	case TenantPrincipal:
		return v.TenantID, true
	case CustomerPrincipal:
		return v.TenantID, true
	default:
		panic(fmt.Sprintf("domain: unknown principal %T", p))
	}
}

// SessionRecord is the persisted form of a principal. The layout is a tagged object:
//
//	{"type":"superuser","user":{...}}
//	{"type":"tenant","user":{...},"tenantId":"..."}
//	{"type":"customer","customer":{...},"tenantId":"..."}
type SessionRecord struct {
	Type     PrincipalKind `json:"type"`
	User     *User         `json:"user,omitempty"`
	Customer *Customer     `json:"customer,omitempty"`
	TenantID string        `json:"tenantId,omitempty"`
}

// NewSessionRecord captures p verbatim.
func NewSessionRecord(p Principal) SessionRecord {
	switch v := p.(type) {
	case OperatorPrincipal:
		return SessionRecord{Type: KindOperator, User: &User{Username: v.Username, Role: RoleAdmin}}
	case TenantPrincipal:
		u := v.User
		return SessionRecord{Type: KindTenant, User: &u, TenantID: v.TenantID}
	case CustomerPrincipal:
		c := v.Customer
		return SessionRecord{Type: KindCustomer, Customer: &c, TenantID: v.TenantID}
	default:
		panic(fmt.Sprintf("domain: unknown principal %T", p))
	}
}

// Principal rebuilds the principal held by the record.
func (r SessionRecord) Principal() (Principal, error) {
	switch r.Type {
	case KindOperator:
		if r.User == nil {
			return nil, fmt.Errorf("session record %q has no user", r.Type)
		}
		return OperatorPrincipal{Username: r.User.Username}, nil
	case KindTenant:
		if r.User == nil || r.TenantID == "" {
			return nil, fmt.Errorf("session record %q is missing user or tenant", r.Type)
		}
		return TenantPrincipal{TenantID: r.TenantID, User: *r.User}, nil
	case KindCustomer:
		if r.Customer == nil || r.TenantID == "" {
			return nil, fmt.Errorf("session record %q is missing customer or tenant", r.Type)
		}
		return CustomerPrincipal{TenantID: r.TenantID, Customer: *r.Customer}, nil
	default:
		return nil, fmt.Errorf("unknown session record type %q", r.Type)
	}
}

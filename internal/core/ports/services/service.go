package services

// ServiceContainer holds all the services wired by NewServiceContainer.
type ServiceContainer struct {
	Registry RegistrySvcFacade
	Ledger   LedgerSvcFacade
	Identity IdentityResolverSvc
	Session  SessionSvcFacade
}

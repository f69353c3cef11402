package services

// ServiceContainer holds instances of all the application services. Handlers
// receive this rather than concrete service types.
type ServiceContainer struct {
	Ledger   LedgerSvcFacade
	APIToken APITokenSvc
	Auth     AuthSvc
}

package repositories

// RepositoryProvider bundles all repositories for wiring in main.
type RepositoryProvider struct {
	LedgerRepo   LedgerRepositoryWithTx
	APITokenRepo APITokenRepository
}

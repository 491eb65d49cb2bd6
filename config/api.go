package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Public paths: checkout quoting is anonymous, the payment callback and
	// cron triggers carry their own shared-secret checks, GraphQL is read-only.
	return []string{"/api/checkout/quote", "/api/checkout/orders", "/graphql"}
}

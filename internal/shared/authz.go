package shared

// Permissions declared for RBAC.
const (
	PermCustomerView   = "sales.customer.view"
	PermCustomerCreate = "sales.customer.create"

	PermCatalogView   = "sales.catalog.view"
	PermCatalogManage = "sales.catalog.manage"

	PermQuoteView    = "sales.quote.view"
	PermQuoteViewAll = "sales.quote.view_all"
	PermQuoteCreate  = "sales.quote.create"
	PermQuoteApprove = "sales.quote.approve"

	PermOrderManage = "sales.order.manage"

	PermSettingsManage = "sales.settings.manage"
	PermReportView     = "sales.report.view"
	PermUserManage     = "users.manage"
)

// SalesRepScopes lists the permissions granted to sales reps.
func SalesRepScopes() []string {
	return []string{
		PermCustomerView,
		PermCustomerCreate,
		PermCatalogView,
		PermQuoteView,
		PermQuoteCreate,
		PermOrderManage,
	}
}

// SalesManagerScopes lists the permissions granted to the sales manager.
func SalesManagerScopes() []string {
	return append(SalesRepScopes(),
		PermCatalogManage,
		PermQuoteViewAll,
		PermQuoteApprove,
		PermSettingsManage,
		PermReportView,
		PermUserManage,
	)
}

// AngelaMos | 2026
// router.go

// Package dashboard picks and renders the landing page for the signed-in
// user's role.
package dashboard

import "github.com/carterperez-dev/templates/edition-console/internal/user"

const (
	TemplateSuperAdmin   = "dashboard_super_admin.html"
	TemplateEditionAdmin = "dashboard_edition_admin.html"
	TemplateCompanyAdmin = "dashboard_company_admin.html"
	TemplateUser         = "dashboard_user.html"
)

type Route struct {
	Template string
	Title    string
}

// RouteFor maps a role onto its dashboard. Channel admins, unknown and empty
// roles all land on the generic user dashboard.
func RouteFor(role user.Role) Route {
	switch user.NormalizeRole(string(role)) {
	case user.RoleSuperAdmin:
		return Route{Template: TemplateSuperAdmin, Title: "Super Admin Dashboard"}
	case user.RoleEditionAdmin:
		return Route{Template: TemplateEditionAdmin, Title: "Edition Admin Dashboard"}
	case user.RoleCompanyAdmin:
		return Route{Template: TemplateCompanyAdmin, Title: "Company Admin Dashboard"}
	default:
		return Route{Template: TemplateUser, Title: "Dashboard"}
	}
}

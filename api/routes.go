package api

// Route path constants
// All remote endpoints are defined here to ensure consistency and prevent typos
const (
	// User Routes - Sign-in & Session
	RouteSignIn       = "/user/signin"
	RouteAdminSignIn  = "/user/admin-login"
	RouteRefreshToken = "/user/refresh-token"
	RouteLogout       = "/user/logout"

	// Product Routes
	RouteProducts   = "/product/all"
	RouteProductAdd = "/product/add"
)

// RouteProduct returns the path for reading a single product.
func RouteProduct(id string) string {
	return "/product/" + id
}

// RouteProductUpdate returns the path for updating a product.
func RouteProductUpdate(id string) string {
	return "/product/update/" + id
}

// RouteProductDelete returns the path for deleting a product.
func RouteProductDelete(id string) string {
	return "/product/delete/" + id
}

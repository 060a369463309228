package domain

// Route is a storefront view the client should navigate to.
type Route string

const (
	RouteHome         Route = "/"
	RouteLogin        Route = "/login"
	RouteCart         Route = "/cart"
	RouteShipping     Route = "/checkout/shipping"
	RoutePayment      Route = "/checkout/payment"
	RouteConfirmation Route = "/checkout/confirmation"
)

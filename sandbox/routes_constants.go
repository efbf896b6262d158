package sandbox

// APIPrefix is where every API route is mounted.
const APIPrefix = "/api/v1"

// Route path constants, relative to APIPrefix.
const (
	// Auth
	RouteAuthLogin     = "/auth/login/"
	RouteAuthVerifyOTP = "/auth/verify-otp/"
	RouteAuthRefresh   = "/auth/refresh/"
	RouteAuthLogout    = "/auth/logout/"
	RouteUsers         = "/auth/users/"
	RouteUsersMe       = "/auth/users/me/"
	RouteUsersActivate = "/auth/users/activation/"

	// Profiles
	RouteProfile       = "/profiles/my-profile/"
	RouteNextOfKin     = "/profiles/my-profile/next-of-kin/"
	RouteNextOfKinItem = "/profiles/my-profile/next-of-kin/{id}/"

	// Accounts
	RouteDeposit                  = "/accounts/deposit/"
	RouteWithdraw                 = "/accounts/initiate-withdrawal/"
	RouteTransferInitiate         = "/accounts/transfer/initiate/"
	RouteTransferSecurityQuestion = "/accounts/transfer/verify-security-question/"
	RouteTransferOTP              = "/accounts/transfer/verify-otp/"
	RouteTransactions             = "/accounts/transactions/"
	RouteStatement                = "/accounts/transactions/pdf/"
	RoutePendingVerification      = "/accounts/pending-verification/"
	RouteVerifyAccount            = "/accounts/verify/{id}/"

	// Cards
	RouteCards     = "/cards/virtual-cards/"
	RouteCard      = "/cards/virtual-cards/{id}/"
	RouteCardTopUp = "/cards/virtual-cards/{id}/top-up/"
)

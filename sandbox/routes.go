package sandbox

import (
	"net/http"

	"github.com/jrsteele09/go-bank-client/users"
)

func (s *Server) initRoutes() {
	// Auth
	s.RegisterRoute(http.MethodPost, RouteAuthLogin, s.LoginHandler())
	s.RegisterRoute(http.MethodPost, RouteAuthVerifyOTP, s.VerifyOTPHandler())
	s.RegisterRoute(http.MethodPost, RouteAuthRefresh, s.RefreshHandler())
	s.RegisterRoute(http.MethodPost, RouteAuthLogout, s.LogoutHandler())
	s.RegisterRoute(http.MethodPost, RouteUsers, s.RegisterHandler())
	s.RegisterRoute(http.MethodPost, RouteUsersActivate, s.ActivateHandler())
	s.RegisterRoute(http.MethodGet, RouteUsersMe, s.authenticated(s.MeHandler()))

	// Profiles
	s.RegisterRoute(http.MethodGet, RouteProfile, s.authenticated(s.ProfileHandler()))
	s.RegisterRoute(http.MethodPatch, RouteProfile, s.authenticated(s.UpdateProfileHandler()))
	s.RegisterRoute(http.MethodGet, RouteNextOfKin, s.authenticated(s.ListNextOfKinHandler()))
	s.RegisterRoute(http.MethodPost, RouteNextOfKin, s.authenticated(s.CreateNextOfKinHandler()))
	s.RegisterRoute(http.MethodPatch, RouteNextOfKinItem, s.authenticated(s.UpdateNextOfKinHandler()))
	s.RegisterRoute(http.MethodPut, RouteNextOfKinItem, s.authenticated(s.UpdateNextOfKinHandler()))
	s.RegisterRoute(http.MethodDelete, RouteNextOfKinItem, s.authenticated(s.DeleteNextOfKinHandler()))

	// Accounts
	s.RegisterRoute(http.MethodPost, RouteDeposit, s.authenticated(s.DepositHandler(), users.RoleTeller))
	s.RegisterRoute(http.MethodPost, RouteWithdraw, s.authenticated(s.WithdrawHandler(), users.RoleCustomer))
	s.RegisterRoute(http.MethodPost, RouteTransferInitiate, s.authenticated(s.TransferInitiateHandler(), users.RoleCustomer))
	s.RegisterRoute(http.MethodPost, RouteTransferSecurityQuestion, s.authenticated(s.TransferSecurityQuestionHandler(), users.RoleCustomer))
	s.RegisterRoute(http.MethodPost, RouteTransferOTP, s.authenticated(s.TransferOTPHandler(), users.RoleCustomer))
	s.RegisterRoute(http.MethodGet, RouteTransactions, s.authenticated(s.TransactionsHandler()))
	s.RegisterRoute(http.MethodPost, RouteStatement, s.authenticated(s.StatementHandler()))
	s.RegisterRoute(http.MethodGet, RoutePendingVerification, s.authenticated(s.PendingVerificationHandler(), users.RoleAccountExecutive))
	s.RegisterRoute(http.MethodPatch, RouteVerifyAccount, s.authenticated(s.VerifyAccountHandler(), users.RoleAccountExecutive))

	// Cards
	s.RegisterRoute(http.MethodGet, RouteCards, s.authenticated(s.ListCardsHandler()))
	s.RegisterRoute(http.MethodPost, RouteCards, s.authenticated(s.CreateCardHandler(), users.RoleCustomer))
	s.RegisterRoute(http.MethodPut, RouteCardTopUp, s.authenticated(s.TopUpCardHandler(), users.RoleCustomer))
	s.RegisterRoute(http.MethodPatch, RouteCardTopUp, s.authenticated(s.TopUpCardHandler(), users.RoleCustomer))
	s.RegisterRoute(http.MethodDelete, RouteCard, s.authenticated(s.DeleteCardHandler(), users.RoleCustomer))
}

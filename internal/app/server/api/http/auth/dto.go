package auth

import "initium/internal/domain/user"

type registerInput struct {
	Body user.RegisterRequest
}

type registerOutput struct {
	Body user.Identity
}

type loginInput struct {
	Body user.LoginRequest
}

type loginOutput struct {
	Body user.TokenPair
}

type refreshInput struct {
	Body user.RefreshRequest
}

type refreshOutput struct {
	Body user.RefreshResponse
}

type logoutInput struct {
	Body user.LogoutRequest
}

type logoutOutput struct {
	Body LogoutResponse
}

type LogoutResponse struct {
	Message string `json:"message"`
}

type meInput struct{}

type meOutput struct {
	Body user.Identity
}

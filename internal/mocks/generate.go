// Package mocks provides mock implementations for testing the session engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	gw := mocks.NewMockAuthGateway(ctrl)
//	gw.EXPECT().RefreshAccess(gomock.Any(), "store-2").Return(ports.TokenResult{AccessToken: tok}, nil)
package mocks

// Generate mock for AuthGateway interface from internal/ports package.
// This creates MockAuthGateway with methods for all AuthGateway interface methods:
// Login, Register, Me, MeFromLocalToken, RefreshAccess, ChangePassword, CheckStoreTrial, CreateStoreTrial
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_gateway_mock.go github.com/Baodng2402/360-Retail-Web-sub000/internal/ports AuthGateway

// Generate mock for CredentialStore interface from internal/ports package.
// This creates MockCredentialStore with methods Get, Set, Clear.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_store_mock.go github.com/Baodng2402/360-Retail-Web-sub000/internal/ports CredentialStore

// Generate mock for ClaimDecoder interface from internal/ports package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=claim_decoder_mock.go github.com/Baodng2402/360-Retail-Web-sub000/internal/ports ClaimDecoder

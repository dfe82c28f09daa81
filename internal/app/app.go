// Package app assembles the stores, repositories and services shared by
// every binary.
package app

import (
	"fmt"

	"carmarket/internal/assistant"
	"carmarket/internal/auth"
	"carmarket/internal/config"
	"carmarket/internal/repository"
	"carmarket/internal/service"
	"carmarket/internal/store"
)

// App is the wired application core.
type App struct {
	Config *config.Config
	Store  store.Store

	Users         repository.UserRepository
	Listings      repository.ListingRepository
	Conversations repository.ConversationRepository
	CommunityRepo repository.CommunityRepository

	Auth      *auth.Service
	Tokens    *auth.Tokens
	Assistant *assistant.Responder
	Listing   *service.ListingService
	Chat      *service.ChatService
	Community *service.CommunityService
}

// New opens the configured store and builds everything on top of it.
func New(cfg *config.Config) (*App, error) {
	s, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a, err := NewWithStore(cfg, s)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStore builds the application on an already opened store.
func NewWithStore(cfg *config.Config, s store.Store) (*App, error) {
	catalogue, err := assistant.LoadCatalogue(cfg.AssistantFallbacksFile)
	if err != nil {
		return nil, err
	}
	responder := assistant.NewResponder(
		assistant.NewGateway(cfg.GeminiAPIKey, cfg.GeminiModel),
		cfg.AssistantTimeout(),
		catalogue,
	)

	a := &App{
		Config:        cfg,
		Store:         s,
		Users:         repository.NewUserRepository(s),
		Listings:      repository.NewListingRepository(s),
		Conversations: repository.NewConversationRepository(s),
		CommunityRepo: repository.NewCommunityRepository(s),
		Tokens:        auth.NewTokens(cfg.JWTSecret),
		Assistant:     responder,
	}
	a.Auth = auth.NewService(a.Users)
	a.Listing = service.NewListingService(a.Listings, a.Users)
	a.Chat = service.NewChatService(a.Conversations, a.Listings, responder, cfg.SellerSimulation)
	a.Community = service.NewCommunityService(a.CommunityRepo)
	return a, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

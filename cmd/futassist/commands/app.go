package commands

import (
	"context"
	"fmt"
	"futassist/lib/credstore"
	"futassist/lib/platforms/ea/identity"
	"futassist/lib/platforms/ea/utas"
	"futassist/lib/pricing"
	"futassist/services/autolist"
	"time"
)

// app holds everything a command needs, built from the configuration.
type app struct {
	config  Config
	store   credstore.Store
	session *autolist.Session
	game    *utas.Client
	close   func()
}

func openStore(ctx context.Context, config StoreConfig) (credstore.Store, func(), error) {
	if config.Type != "sqlite" {
		return credstore.NewFileStore(config.File), func() {}, nil
	}
	db, err := config.Database.OpenDB()
	if err != nil {
		return nil, nil, err
	}
	store, err := credstore.NewSQLStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}

func newApp(ctx context.Context) (*app, error) {
	config, err := ReadConfig(*configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	secrets, err := ReadSecrets()
	if err != nil {
		return nil, err
	}

	store, closeStore, err := openStore(ctx, config.Store)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	idClient, err := identity.NewClient(identity.ClientOptions{
		AuthURL:            config.Identity.AuthURL,
		ClientID:           config.Identity.ClientID,
		RedirectURI:        config.Identity.RedirectURI,
		Scope:              config.Identity.Scope,
		RefreshCookie:      config.Identity.RefreshCookie,
		UserAgent:          config.UserAgent,
		Timeout:            config.Timeout(),
		InsecureSkipVerify: config.InsecureSkipVerify,
	})
	if err != nil {
		closeStore()
		return nil, err
	}

	game := utas.NewClient(utas.ClientOptions{
		Endpoints:          config.Game.Endpoints,
		Game:               config.Game.Game,
		UserAgent:          config.UserAgent,
		Timeout:            config.Timeout(),
		InsecureSkipVerify: config.InsecureSkipVerify,
	})

	session := autolist.NewSession(autolist.SessionOptions{
		Identity: idClient,
		Game:     game,
		Store:    store,
		Credentials: identity.Credentials{
			Email:    secrets.Email,
			Password: secrets.Password,
		},
		Prompt: stdinCodePrompt(),
	})

	return &app{
		config:  config,
		store:   store,
		session: session,
		game:    game,
		close: func() {
			game.Close()
			closeStore()
		},
	}, nil
}

func newPriceSource(config Config) (pricing.PriceSource, error) {
	if config.Pricing.Source == "sheet" {
		return pricing.ReadSheet(config.Pricing.Sheet)
	}
	return pricing.NewFutbinSource(pricing.FutbinOptions{
		BaseURL:       config.Pricing.Futbin.BaseURL,
		SearchPath:    config.Pricing.Futbin.SearchPath,
		Selectors:     config.Pricing.Futbin.Selectors,
		MinSimilarity: config.Pricing.Futbin.MinSimilarity,
		UserAgent:     config.UserAgent,
		Timeout:       config.Timeout(),
	}), nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

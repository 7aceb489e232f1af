package main

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"taglift/internal/config"
	"taglift/internal/credential"
)

func loadConfig(configFlag *string) (*config.Config, string, error) {
	path := ""
	if configFlag != nil {
		path = *configFlag
	}
	cfg, resolvedPath, _, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, resolvedPath, nil
}

func newHTTPClient(requestTimeoutSeconds, connectTimeoutSeconds int) *http.Client {
	client := &http.Client{}
	if requestTimeoutSeconds > 0 {
		client.Timeout = time.Duration(requestTimeoutSeconds) * time.Second
	}
	if connectTimeoutSeconds > 0 {
		client.Transport = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: time.Duration(connectTimeoutSeconds) * time.Second,
			}).DialContext,
		}
	}
	return client
}

func newCredentialManager(cfg *config.Config, logger *slog.Logger) (*credential.Manager, error) {
	auth, err := credential.NewCommandAuthenticator(
		cfg.Auth.Command,
		time.Duration(cfg.Auth.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		return nil, err
	}
	store := credential.NewFileStore(cfg.CredentialPath())
	return credential.NewManager(store, auth, logger)
}

// Package credentials stores payment gateway secrets in the database so keys
// can be rotated by an operator without a redeploy. Environment variables
// remain the fallback when no stored secret exists.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Secret returns the stored secret for a gateway, or "" when none was set.
func (s *Store) Secret(ctx context.Context, gateway string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectGatewayCredential, gateway)
	var secret string
	if err := row.Scan(&secret); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(secret), nil
}

// SecretOr resolves a gateway secret, preferring the stored value over the
// environment-sourced fallback.
func (s *Store) SecretOr(ctx context.Context, gateway, fallback string) (string, error) {
	secret, err := s.Secret(ctx, gateway)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return fallback, nil
	}
	return secret, nil
}

// SetSecret stores or rotates a gateway secret.
func (s *Store) SetSecret(ctx context.Context, gateway, secret string, props map[string]any) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("gateway secret is required")
	}
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertGatewayCredential, gateway, secret, raw)
	return err
}

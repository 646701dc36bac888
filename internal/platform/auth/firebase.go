package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/tiemmay/api/internal/platform/config"
)

// TokenVerifier validates a bearer token and returns the caller identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// FirebaseVerifier verifies ID tokens with the Firebase Admin SDK.
type FirebaseVerifier struct {
	client *firebaseauth.Client
}

// NewFirebaseVerifier initializes the Admin SDK app and auth client.
func NewFirebaseVerifier(ctx context.Context, cfg config.FirebaseConfig) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify validates the token and maps its claims onto an Identity.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("verify id token: %w", err)
	}
	return identityFromClaims(decoded.UID, decoded.Claims), nil
}

func identityFromClaims(uid string, claims map[string]any) Identity {
	id := Identity{UID: uid}
	if phone, ok := claims["phone_number"].(string); ok {
		id.PhoneNumber = phone
	}
	if name, ok := claims["name"].(string); ok {
		id.DisplayName = name
	}
	id.Roles = rolesFromClaims(claims)
	return id
}

// rolesFromClaims accepts either a single "role" string or a "roles" list.
func rolesFromClaims(claims map[string]any) []string {
	var roles []string
	if role, ok := claims["role"].(string); ok && role != "" {
		roles = append(roles, role)
	}
	if raw, ok := claims["roles"].([]any); ok {
		for _, item := range raw {
			if role, ok := item.(string); ok && role != "" {
				roles = append(roles, role)
			}
		}
	}
	return roles
}

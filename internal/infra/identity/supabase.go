package identity

import (
	"context"
	"log"

	"github.com/golang-jwt/jwt/v5"
	supabase "github.com/nedpals/supabase-go"
	"github.com/rs/zerolog"

	"expense-ltd/internal/config"
	"expense-ltd/internal/domain"
	"expense-ltd/internal/domain/ports/adapter"
)

var _ adapter.IdentityProvider = (*SupabaseProvider)(nil)

// SupabaseProvider verifies access tokens locally (HMAC, shared JWT secret)
// and mirrors entitlement flags onto the user's profile through the admin API.
type SupabaseProvider struct {
	client    *supabase.Client
	jwtSecret []byte
	log       *zerolog.Logger
}

func NewSupabaseProvider(cfg *config.IdentityConfig, logger *zerolog.Logger) *SupabaseProvider {
	client := supabase.CreateClient(cfg.BaseURL, cfg.ServiceKey)
	if client == nil {
		log.Fatalf("failed to create identity client")
	}
	return &SupabaseProvider{
		client:    client,
		jwtSecret: []byte(cfg.JWTSecret),
		log:       logger,
	}
}

// VerifyToken parses the access token with the project's JWT secret and
// returns the subject claim. Any parse or claim failure maps to
// domain.ErrUserNotAuthenticated; callers never see raw JWT errors.
func (p *SupabaseProvider) VerifyToken(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUserNotAuthenticated
		}
		return p.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrUserNotAuthenticated
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrUserNotAuthenticated
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", domain.ErrUserNotAuthenticated
	}
	return sub, nil
}

func (p *SupabaseProvider) UpdateUserMetadata(ctx context.Context, userID string, fields adapter.EntitlementFields) error {
	params := supabase.AdminUserParams{
		UserMetadata: map[string]interface{}{
			"is_lifetime_user":  fields.IsLifetimeUser,
			"plan_tier":         fields.PlanTier,
			"source_code":       fields.SourceCode,
			"redemption_date":   fields.RedemptionDate,
			"subscription_type": fields.SubscriptionType,
		},
	}
	if _, err := p.client.Admin.UpdateUser(ctx, userID, params); err != nil {
		return err
	}
	p.log.Debug().Str("user_id", userID).Str("plan_tier", fields.PlanTier).Msg("profile metadata mirrored")
	return nil
}

package usecase

import (
	"context"
	"fmt"

	"driveattach/pkg/errors"
)

// AuthUseCase orchestrates the one-time Drive consent exchange. The actual
// OAuth mechanics live behind DriveAuthorizer; this use case only persists
// the resulting credentials.
type AuthUseCase struct {
	configs    *ConfigUseCase
	authorizer DriveAuthorizer
}

func NewAuthUseCase(configs *ConfigUseCase, authorizer DriveAuthorizer) *AuthUseCase {
	return &AuthUseCase{
		configs:    configs,
		authorizer: authorizer,
	}
}

type AuthorizeResult struct {
	ConsentURL string `json:"consent_url,omitempty"`
	Success    bool   `json:"success,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Authorize returns a consent URL when no authorization code is on hand or
// the caller forces re-authorization; otherwise it exchanges the code for a
// refresh credential and persists both.
func (uc *AuthUseCase) Authorize(ctx context.Context, reauthorize bool, code string) (*AuthorizeResult, error) {
	cfg, err := uc.configs.Get(ctx)
	if err != nil {
		return nil, err
	}

	oauthCode := cfg.AuthorizationCode
	if code != "" {
		oauthCode = code
	}

	if oauthCode == "" || reauthorize {
		if reauthorize {
			// A new consent may target a different account; the configured
			// folder belongs to the old one.
			if err := uc.configs.Update(ctx, map[string]interface{}{"parentFolderId": ""}); err != nil {
				return nil, err
			}
		}
		return &AuthorizeResult{ConsentURL: uc.authorizer.AuthURL("drive-attachment-config")}, nil
	}

	token, err := uc.authorizer.Exchange(ctx, oauthCode)
	if err != nil {
		return nil, errors.BadRequest(fmt.Sprintf("Error during authorization: %v", err), err)
	}

	fields := map[string]interface{}{"authorizationCode": oauthCode}
	if token.RefreshToken != "" {
		fields["refreshToken"] = token.RefreshToken
	}
	if err := uc.configs.Update(ctx, fields); err != nil {
		return nil, err
	}

	return &AuthorizeResult{Success: true, Message: "Authorization successful"}, nil
}

package accounts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/picloop/identity/internal/common"
	"github.com/picloop/identity/internal/config"
	"github.com/picloop/identity/internal/cryptox"
	"github.com/picloop/identity/internal/logging"
	"github.com/picloop/identity/internal/mediastore"
)

// federatedCreateAttempts bounds handle regeneration when a generated
// username collides with an existing one.
const federatedCreateAttempts = 3

// ProfileUpload carries the uploaded profile image of a registration.
type ProfileUpload struct {
	FileName    string
	ContentType string
	Content     []byte
}

// RegisterParams are the inputs of a password registration.
type RegisterParams struct {
	FullName string
	UserName string
	Email    string
	Password string
	Profile  *ProfileUpload
}

// Service provides the account identity operations:
//   - Register: create a password account with a profile upload
//   - Login: verify credentials
//   - FederatedLogin: find-or-create an account for a federated sign-in
type Service struct {
	repo         Repository
	media        mediastore.Store
	logger       logging.Logger
	bucket       string
	mediaBaseURL string
}

// NewService constructs a Service using the account repository, the media
// store, and the server config.
func NewService(repo Repository, media mediastore.Store, logger logging.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:         repo,
		media:        media,
		logger:       logger.With("module", "accounts"),
		bucket:       cfg.S3Bucket,
		mediaBaseURL: cfg.MediaBaseURL,
	}
}

// Register creates a new password account. All fields and a non-empty
// profile upload are required; validation failures happen before any
// store or media call. The existence pre-check is a fast path only: the
// store's own uniqueness constraints remain the source of truth under
// concurrent registrations.
//
// The media upload and the account insert are issued concurrently and
// jointly awaited. There is no cross-store rollback; a partial failure
// is logged with enough context for a later reconciliation sweep.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*PublicView, error) {

	if p.FullName == "" || p.UserName == "" || p.Email == "" || p.Password == "" {
		return nil, fmt.Errorf("%w: all fields are required", common.ErrorValidation)
	}
	if p.Profile == nil || len(p.Profile.Content) == 0 {
		return nil, fmt.Errorf("%w: profile image is required", common.ErrorValidation)
	}

	exists, err := s.repo.ExistsByEmailOrUserName(ctx, p.Email, p.UserName)
	if err != nil {
		return nil, fmt.Errorf("%w: checking existing accounts: %v", common.ErrorStorage, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email or username is already taken", common.ErrorAlreadyExists)
	}

	digest, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	key := mediastore.UniqueMediaName(p.Profile.FileName)

	draft := &Account{
		FullName:     p.FullName,
		UserName:     p.UserName,
		Email:        p.Email,
		PasswordHash: digest,
		ProfileImage: StoredKey(key),
	}

	var (
		created   *Account
		createErr error
		uploadErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		uploadErr = s.media.Put(ctx, s.bucket, key, p.Profile.Content, p.Profile.ContentType)
	}()
	go func() {
		defer wg.Done()
		created, createErr = s.repo.Create(ctx, draft)
	}()
	wg.Wait()

	if uploadErr != nil || createErr != nil {
		s.logDualWriteFailure(ctx, p.Email, key, uploadErr, createErr)
	}
	if uploadErr != nil {
		return nil, uploadErr
	}
	if createErr != nil {
		if errors.Is(createErr, common.ErrorAlreadyExists) {
			return nil, createErr
		}
		return nil, fmt.Errorf("%w: creating account: %v", common.ErrorStorage, createErr)
	}

	return created.PublicView(s.mediaBaseURL), nil
}

// Login verifies a password sign-in. Both an unknown email and a wrong
// password resolve to a client error whose public message does not
// reveal which factor failed.
func (s *Service) Login(ctx context.Context, email, password string) (*PublicView, error) {

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("%w: finding account: %v", common.ErrorStorage, err)
	}

	// Accounts created through federated sign-in have no local password.
	if account.PasswordHash == "" {
		return nil, fmt.Errorf("%w: invalid email or password", common.ErrorUnauthorized)
	}

	match, err := cryptox.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, fmt.Errorf("%w: invalid email or password", common.ErrorUnauthorized)
	}

	return account.PublicView(s.mediaBaseURL), nil
}

// FederatedLogin reconciles a federated sign-in keyed by email:
// an existing account is returned as-is (the incoming fullName and image
// are ignored), a fresh email gets a new account with a generated handle
// and the provider image URL stored verbatim. No intermediate state is
// ever persisted.
func (s *Service) FederatedLogin(ctx context.Context, email, fullName, image string) (*PublicView, error) {

	if email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrorValidation)
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return account.PublicView(s.mediaBaseURL), nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: finding account: %v", common.ErrorStorage, err)
	}

	// First sighting of this email: create the account. A generated
	// handle can collide with an existing username, so retry with a
	// fresh suffix a bounded number of times.
	var created *Account
	for attempt := 1; ; attempt++ {
		handle, err := GenerateHandle(fullName)
		if err != nil {
			return nil, err
		}

		draft := &Account{
			FullName:     fullName,
			UserName:     handle,
			Email:        email,
			ProfileImage: ExternalURL(image),
		}

		created, err = s.repo.Create(ctx, draft)
		if err == nil {
			break
		}
		if errors.Is(err, common.ErrorAlreadyExists) && attempt < federatedCreateAttempts {
			s.logger.Warn(ctx, "generated handle collided, retrying", "handle", handle, "attempt", attempt)
			continue
		}
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: creating account: %v", common.ErrorStorage, err)
	}

	return created.PublicView(s.mediaBaseURL), nil
}

// logDualWriteFailure records a failed side of the registrar's dual
// write so orphaned media or accounts can be found by a later sweep.
func (s *Service) logDualWriteFailure(ctx context.Context, email, key string, uploadErr, createErr error) {
	switch {
	case uploadErr != nil && createErr == nil:
		s.logger.Warn(ctx, "profile upload failed after account create, media key is dangling",
			"email", email, "media_key", key, "error", uploadErr.Error())
	case uploadErr == nil && createErr != nil:
		s.logger.Warn(ctx, "account create failed after profile upload, media object is orphaned",
			"email", email, "media_key", key, "error", createErr.Error())
	default:
		s.logger.Error(ctx, "registration dual write failed on both sides",
			"email", email, "media_key", key,
			"upload_error", uploadErr.Error(), "create_error", createErr.Error())
	}
}

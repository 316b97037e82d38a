package accounts

import (
	"time"

	"github.com/picloop/identity/internal/mediastore"
)

// ProfileImageKind distinguishes the two media sourcing strategies: an
// uploaded file identified by a storage key, or an external URL supplied
// by a federated identity provider.
type ProfileImageKind int

const (
	// ProfileImageStoredKey is an opaque object-storage key resolved
	// against the media base URL at read time.
	ProfileImageStoredKey ProfileImageKind = iota
	// ProfileImageExternalURL is an absolute URL referenced verbatim,
	// never re-hosted.
	ProfileImageExternalURL
)

// ProfileImage is a tagged variant for the profile picture source.
type ProfileImage struct {
	Kind  ProfileImageKind
	Value string
}

// StoredKey builds a ProfileImage backed by object storage.
func StoredKey(key string) ProfileImage {
	return ProfileImage{Kind: ProfileImageStoredKey, Value: key}
}

// ExternalURL builds a ProfileImage referencing a provider-hosted image.
func ExternalURL(url string) ProfileImage {
	return ProfileImage{Kind: ProfileImageExternalURL, Value: url}
}

// Resolve returns the servable URL for the image. Stored keys are joined
// with the media base URL; external URLs pass through unchanged.
func (p ProfileImage) Resolve(mediaBaseURL string) string {
	if p.Kind == ProfileImageExternalURL {
		return p.Value
	}
	return mediastore.MediaURL(mediaBaseURL, p.Value)
}

// Account is the persisted identity record. ID is assigned by the store
// at creation and never changes. PasswordHash is empty for accounts that
// only ever signed in through the federated provider.
//
// The ProfileImage variant also encodes the account's origin: a stored
// key means a password registration, an external URL means the account
// was created through federated sign-in. The repository persists this as
// the is_google_user column.
type Account struct {
	ID           string
	FullName     string
	UserName     string
	Email        string
	PasswordHash string
	ProfileImage ProfileImage
	CreatedAt    time.Time
}

// IsFederated reports whether the account originated via federated
// sign-in.
func (a *Account) IsFederated() bool {
	return a.ProfileImage.Kind == ProfileImageExternalURL
}

// PublicView is the subset of an account safe to return to a client.
// The password hash is never part of it.
type PublicView struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	UserName     string `json:"userName"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
}

// PublicView shapes the account for clients, resolving the profile image
// against the given media base URL.
func (a *Account) PublicView(mediaBaseURL string) *PublicView {
	return &PublicView{
		ID:           a.ID,
		FullName:     a.FullName,
		UserName:     a.UserName,
		Email:        a.Email,
		ProfileImage: a.ProfileImage.Resolve(mediaBaseURL),
	}
}

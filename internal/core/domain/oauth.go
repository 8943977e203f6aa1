package domain

// OAuthIdentity is the profile an external provider vouches for after a
// successful code exchange.
type OAuthIdentity struct {
	Provider   string
	ExternalID string
	Email      string
	FullName   string
	PictureURL string
}

// Complete reports whether the identity carries the fields required to
// resolve or create a local account.
func (i OAuthIdentity) Complete() bool {
	return i.ExternalID != "" && i.Email != ""
}

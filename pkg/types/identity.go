package types

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/soukly/soukly-backend/pkg/enums"
)

// Identity is the resolved caller of a request: an authenticated account or
// an anonymous device. Exactly one of UserID / DeviceToken is meaningful.
type Identity struct {
	Kind        enums.IdentityKind
	UserID      uuid.UUID
	DeviceToken string
}

// GuestIdentity builds a device-scoped identity.
func GuestIdentity(deviceToken string) Identity {
	return Identity{Kind: enums.IdentityGuest, DeviceToken: deviceToken}
}

// AccountIdentity builds a user-scoped identity.
func AccountIdentity(userID uuid.UUID) Identity {
	return Identity{Kind: enums.IdentityAccount, UserID: userID}
}

// IsAccount reports whether the identity is an authenticated account.
func (i Identity) IsAccount() bool {
	return i.Kind == enums.IdentityAccount
}

// Key returns the stable storage key for per-identity state.
func (i Identity) Key() string {
	if i.IsAccount() {
		return fmt.Sprintf("user:%s", i.UserID)
	}
	return fmt.Sprintf("device:%s", i.DeviceToken)
}

// Valid reports whether the identity carries its required reference.
func (i Identity) Valid() bool {
	if i.IsAccount() {
		return i.UserID != uuid.Nil
	}
	return i.Kind == enums.IdentityGuest && i.DeviceToken != ""
}

package enums

// IdentityKind distinguishes anonymous device-bound visitors from signed-in accounts.
type IdentityKind string

const (
	IdentityGuest   IdentityKind = "guest"
	IdentityAccount IdentityKind = "account"
)

// String implements fmt.Stringer.
func (i IdentityKind) String() string {
	return string(i)
}

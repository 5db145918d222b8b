package testutil

// PlainHasher is a PasswordHasher that stores passwords with a marker
// prefix instead of hashing. bcrypt is far too slow for table tests.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (PlainHasher) Verify(hash, password string) bool {
	return hash == "plain:"+password
}

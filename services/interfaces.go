package services

// PasswordHasher abstracts password hashing so the account service does not
// depend on a specific algorithm.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) error
}

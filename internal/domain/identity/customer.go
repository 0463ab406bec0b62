package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/tungtungsport/storefront/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role decides which part of the API an account may use
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
)

// IsValid checks if the role is a valid value
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleStaff
}

// passwordCost is the bcrypt cost for password hashes
var passwordCost = 12

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex     = regexp.MustCompile(`^\+?[0-9][0-9\- ]{6,19}$`)
	hasLetterRegex = regexp.MustCompile(`[a-zA-Z]`)
	hasNumberRegex = regexp.MustCompile(`[0-9]`)
)

// Identity errors
var (
	ErrCustomerNotFound   = shared.NewDomainError("NOT_FOUND", "Account not found")
	ErrEmailTaken         = shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	ErrInvalidCredentials = shared.NewDomainError(shared.CodeNotAuthenticated, "Invalid email or password")
)

// Customer is a storefront account. Staff accounts share the same shape and
// differ only by role.
type Customer struct {
	shared.BaseAggregateRoot
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Address      string
	Role         Role
	LastLoginAt  *time.Time
}

// NewCustomer registers a new customer account
func NewCustomer(email, password, name string) (*Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      hash,
		Name:              name,
		Role:              RoleCustomer,
	}, nil
}

// UpdateProfile changes the contact details used to pre-fill checkout
func (c *Customer) UpdateProfile(name, phone, address string) error {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	if phone != "" && !phoneRegex.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number")
	}
	if len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	c.Name = name
	c.Phone = phone
	c.Address = strings.TrimSpace(address)
	c.UpdatedAt = time.Now()
	return nil
}

// ChangePassword changes the password after checking the current one
func (c *Customer) ChangePassword(oldPassword, newPassword string) error {
	if !c.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	c.PasswordHash = hash
	c.UpdatedAt = time.Now()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (c *Customer) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
	return err == nil
}

// PromoteToStaff grants access to the staff endpoints
func (c *Customer) PromoteToStaff() {
	c.Role = RoleStaff
	c.UpdatedAt = time.Now()
}

// IsStaff reports whether the account has the staff role
func (c *Customer) IsStaff() bool {
	return c.Role == RoleStaff
}

// RecordLogin stamps a successful login
func (c *Customer) RecordLogin(now time.Time) {
	c.LastLoginAt = &now
}

// HasCompleteShippingInfo reports whether the profile can pre-fill checkout
func (c *Customer) HasCompleteShippingInfo() bool {
	return c.Name != "" && c.Phone != "" && c.Address != ""
}

// Validation functions

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetterRegex.MatchString(password) || !hasNumberRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

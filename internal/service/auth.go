// Package service provides the account directory: the set of registered
// users, password checks and write-through persistence through a
// UserRepository.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/fcgen/internal/models"
)

// UserRepository defines the persistence operations
// required by the account directory.
type UserRepository interface {
	// Load returns every stored user record keyed by username.
	Load(ctx context.Context) (map[string]models.UserRecord, error)
	// Save replaces the stored directory with records.
	Save(ctx context.Context, records map[string]models.UserRecord) error
}

// AccountDirectory owns every registered user. Each mutation is persisted
// by saving the whole directory.
type AccountDirectory struct {
	repo   UserRepository
	hasher PasswordHasher
	log    *zap.Logger

	users map[string]*models.User
}

// NewAccountDirectory constructs an empty directory. Call Load to read the
// stored users.
func NewAccountDirectory(repo UserRepository, hasher PasswordHasher, log *zap.Logger) *AccountDirectory {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountDirectory{
		repo:   repo,
		hasher: hasher,
		log:    log,
		users:  make(map[string]*models.User),
	}
}

// Load replaces the in-memory directory with the stored one.
func (d *AccountDirectory) Load(ctx context.Context) error {
	records, err := d.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	users := make(map[string]*models.User, len(records))
	for name, rec := range records {
		u, err := models.FromRecord(rec)
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		users[name] = u
	}
	d.users = users
	d.log.Info("users loaded", zap.Int("count", len(users)))
	return nil
}

// Save persists the whole directory.
func (d *AccountDirectory) Save(ctx context.Context) error {
	records := make(map[string]models.UserRecord, len(d.users))
	for name, u := range d.users {
		rec, err := models.ToRecord(u)
		if err != nil {
			return fmt.Errorf("save users: %w", err)
		}
		records[name] = rec
	}
	if err := d.repo.Save(ctx, records); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// Register creates a user with a "main" profile and persists the directory.
// If persisting fails the user is not added.
func (d *AccountDirectory) Register(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, models.ErrEmptyName
	}
	if d.Exists(username) {
		return nil, fmt.Errorf("user %q: %w", username, models.ErrDuplicateUser)
	}

	hash, err := d.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := models.NewUser(username, hash)
	if _, err := u.AddProfile(models.DefaultProfileName); err != nil {
		return nil, err
	}

	d.users[username] = u
	if err := d.Save(ctx); err != nil {
		delete(d.users, username)
		return nil, err
	}
	d.log.Info("user registered", zap.String("username", username))
	return u, nil
}

// Remove deletes the user and persists the directory. If persisting fails
// the user is restored.
func (d *AccountDirectory) Remove(ctx context.Context, username string) error {
	u, err := d.Lookup(username)
	if err != nil {
		return err
	}
	delete(d.users, username)
	if err := d.Save(ctx); err != nil {
		d.users[username] = u
		return err
	}
	d.log.Info("user removed", zap.String("username", username))
	return nil
}

// VerifyPassword checks password against the stored hash without touching
// any session flag.
func (d *AccountDirectory) VerifyPassword(username, password string) (*models.User, error) {
	u, err := d.Lookup(username)
	if err != nil {
		return nil, err
	}
	if !d.hasher.Verify(u.PasswordHash, password) {
		return nil, fmt.Errorf("user %q: %w", username, models.ErrWrongPassword)
	}
	return u, nil
}

// Authenticate verifies the password and marks the user as the only logged
// in one.
func (d *AccountDirectory) Authenticate(username, password string) (*models.User, error) {
	u, err := d.VerifyPassword(username, password)
	if err != nil {
		d.log.Info("login failed", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	d.LogoutAll()
	u.IsLoggedIn = true
	d.log.Info("user logged in", zap.String("username", username))
	return u, nil
}

// LogoutAll clears the session flag of every user.
func (d *AccountDirectory) LogoutAll() {
	for _, u := range d.users {
		u.IsLoggedIn = false
	}
}

// Exists reports whether username is registered.
func (d *AccountDirectory) Exists(username string) bool {
	_, ok := d.users[username]
	return ok
}

// Lookup returns the registered user or models.ErrUnknownUser.
func (d *AccountDirectory) Lookup(username string) (*models.User, error) {
	u, ok := d.users[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, models.ErrUnknownUser)
	}
	return u, nil
}

// Usernames returns the registered usernames in sorted order.
func (d *AccountDirectory) Usernames() []string {
	names := make([]string, 0, len(d.users))
	for name := range d.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Update applies fn to the user and persists the directory. When fn or the
// save fails the user is restored to its previous state.
func (d *AccountDirectory) Update(ctx context.Context, username string, fn func(*models.User) error) error {
	u, err := d.Lookup(username)
	if err != nil {
		return err
	}
	snapshot, err := models.ToRecord(u)
	if err != nil {
		return err
	}

	loggedIn := u.IsLoggedIn
	restore := func() {
		prev, rerr := models.FromRecord(snapshot)
		if rerr != nil {
			d.log.Error("restore user", zap.String("username", username), zap.Error(rerr))
			return
		}
		*u = *prev
		u.IsLoggedIn = loggedIn
	}

	if err := fn(u); err != nil {
		restore()
		return err
	}
	if err := d.Save(ctx); err != nil {
		restore()
		return err
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"task-manager/database"
	"task-manager/models"
)

const userColumns = "id, name, email, password, age, created_at, updated_at"

// UserStore persists users and the session tokens issued to them
type UserStore struct {
	base
	cost int
}

// NewUserStore creates a user store on db
func NewUserStore(db *sqlx.DB, opts Options) *UserStore {
	return &UserStore{base: newBase(db, opts), cost: opts.BcryptCost}
}

// Create validates u, hashes its password and inserts it. On success u carries
// the generated id, timestamps and the hashed password.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	if err := s.prepare(u); err != nil {
		return err
	}
	return s.insert(ctx, s.db, u)
}

// Register creates u together with its first session token in one
// transaction. issue mints the token once u has its id; if issuing or storing
// the token fails, the user is not created either.
func (s *UserStore) Register(ctx context.Context, u *models.User, issue func(userID string) (string, error)) (string, error) {
	if err := s.prepare(u); err != nil {
		return "", err
	}

	var token string
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.insert(ctx, tx, u); err != nil {
			return err
		}

		var err error
		token, err = issue(u.ID)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		return s.insertToken(ctx, tx, u.ID, token)
	})
	if err != nil {
		return "", err
	}

	u.Tokens = []string{token}
	return token, nil
}

func (s *UserStore) prepare(u *models.User) error {
	if err := models.ValidateUser(u); err != nil {
		return err
	}

	hashed, err := hashPassword(u.Password, s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u.ID = uuid.NewString()
	u.Password = hashed
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Tokens = nil
	return nil
}

func (s *UserStore) insert(ctx context.Context, e sqlx.ExecerContext, u *models.User) error {
	_, err := e.ExecContext(ctx, s.q(`INSERT INTO users (id, name, email, password, age, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Name, u.Email, u.Password, u.Age, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByID loads a user and its token list
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return s.find(ctx, s.db, "id = ?", id)
}

// FindByCredentials looks a user up by email and checks the password. Every
// mismatch is reported as ErrInvalidCredentials.
func (s *UserStore) FindByCredentials(ctx context.Context, email, password string) (*models.User, error) {
	lookup := models.User{Email: email}
	lookup.Normalize()

	u, err := s.find(ctx, s.db, "email = ?", lookup.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// FindByToken returns the user with the given id whose token list contains
// token
func (s *UserStore) FindByToken(ctx context.Context, id, token string) (*models.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	var owner string
	err := s.db.GetContext(ctx, &owner, s.q("SELECT user_id FROM user_tokens WHERE token = ? AND user_id = ?"), token, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query token: %w", err)
	}

	return s.find(ctx, s.db, "id = ?", owner)
}

// AddToken appends token to the user's token list
func (s *UserStore) AddToken(ctx context.Context, userID, token string) error {
	return s.insertToken(ctx, s.db, userID, token)
}

func (s *UserStore) insertToken(ctx context.Context, e sqlx.ExecerContext, userID, token string) error {
	_, err := e.ExecContext(ctx, s.q("INSERT INTO user_tokens (token, user_id, created_at) VALUES (?, ?, ?)"),
		token, userID, s.now())
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// RemoveToken revokes a single token of the user
func (s *UserStore) RemoveToken(ctx context.Context, userID, token string) error {
	_, err := s.db.ExecContext(ctx, s.q("DELETE FROM user_tokens WHERE user_id = ? AND token = ?"), userID, token)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// ClearTokens revokes every token of the user
func (s *UserStore) ClearTokens(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, s.q("DELETE FROM user_tokens WHERE user_id = ?"), userID)
	if err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}

// Update applies req to the stored user, re-validates and persists it. The
// password is re-hashed when req changes it. Nothing is written when
// validation fails.
func (s *UserStore) Update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	var updated *models.User
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		u, err := s.find(ctx, tx, "id = ?", id)
		if err != nil {
			return err
		}

		req.Apply(u)
		if err := models.ValidateUser(u); err != nil {
			return err
		}

		if req.Password != nil {
			hashed, err := hashPassword(u.Password, s.cost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			u.Password = hashed
		}
		u.UpdatedAt = s.now()

		_, err = tx.ExecContext(ctx, s.q("UPDATE users SET name = ?, email = ?, password = ?, age = ?, updated_at = ? WHERE id = ?"),
			u.Name, u.Email, u.Password, u.Age, u.UpdatedAt, u.ID)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("update user: %w", err)
		}

		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the user together with its tokens and tasks
func (s *UserStore) Delete(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	var removed *models.User
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		u, err := s.find(ctx, tx, "id = ?", id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM tasks WHERE owner_id = ?"), id); err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM user_tokens WHERE user_id = ?"), id); err != nil {
			return fmt.Errorf("delete tokens: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM users WHERE id = ?"), id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		removed = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

// SetAvatar stores the avatar image of the user; nil clears it
func (s *UserStore) SetAvatar(ctx context.Context, id string, avatar []byte) error {
	if !validID(id) {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, s.q("UPDATE users SET avatar = ?, updated_at = ? WHERE id = ?"), avatar, s.now(), id)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Avatar returns the stored avatar; ErrNotFound when the user or the avatar
// does not exist
func (s *UserStore) Avatar(ctx context.Context, id string) ([]byte, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	var avatar []byte
	err := s.db.GetContext(ctx, &avatar, s.q("SELECT avatar FROM users WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query avatar: %w", err)
	}
	if len(avatar) == 0 {
		return nil, ErrNotFound
	}
	return avatar, nil
}

func (s *UserStore) find(ctx context.Context, q sqlx.QueryerContext, where string, args ...any) (*models.User, error) {
	u := &models.User{}
	err := sqlx.GetContext(ctx, q, u, s.q("SELECT "+userColumns+" FROM users WHERE "+where), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	err = sqlx.SelectContext(ctx, q, &u.Tokens, s.q("SELECT token FROM user_tokens WHERE user_id = ? ORDER BY created_at"), u.ID)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}

	return u, nil
}

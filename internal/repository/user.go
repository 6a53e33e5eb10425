package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/jobs/api/internal/database"
	"github.com/forgo/jobs/api/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user and fills in ID and timestamps.
// A taken email returns database.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Hash == nil {
		return errors.New("user hash is required")
	}

	query := `
		CREATE user CONTENT {
			email: $email,
			name: $name,
			hash: $hash,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"email": user.Email,
		"name":  user.Name,
		"hash":  *user.Hash,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := parseUserResult(result)
	if err != nil {
		return err
	}

	user.ID = created.ID
	user.CreatedOn = created.CreatedOn
	user.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a user by ID. Returns nil, nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	rid, ok := recordID("user", id)
	if !ok {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": rid})
}

// GetByEmail retrieves a user by normalized email. Returns nil, nil when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM user WHERE email = $email LIMIT 1`, map[string]interface{}{"email": email})
}

func (r *UserRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := parseUserResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func parseUserResult(result interface{}) (*model.User, error) {
	data, err := recordMap(result)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        convertSurrealID(data["id"]),
		Email:     getString(data, "email"),
		Name:      getString(data, "name"),
		CreatedOn: parseTime(data["created_on"]),
		UpdatedOn: parseTime(data["updated_on"]),
	}
	if h, ok := data["hash"].(string); ok && h != "" {
		user.Hash = &h
	}
	if user.ID == "" {
		return nil, errors.New("user record has no id")
	}
	return user, nil
}

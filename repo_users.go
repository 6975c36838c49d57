package auth

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the repository surface for durable user records
type Users interface {
	UserStore

	ExistsByIdentifier(ctx context.Context, identifier string) (bool, error)
	Create(ctx context.Context, user *User, roles ...string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository builds a bun backed Users repository
func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

// RegisterModels registers the m2m join so bun can resolve the Roles
// relation. Call once per bun.DB before using the repository.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*UserToRole)(nil))
}

// CreateSchema creates the users, roles, and user_roles tables if missing
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*Role)(nil),
		(*UserToRole)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create schema")
		}
	}

	return nil
}

func (r *users) GetByID(ctx context.Context, id int64) (*User, error) {
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Relation("Roles").
		Where("usr.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(err, errors.CategoryNotFound, "user not found").
				WithCode(errors.CodeNotFound)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}

	return user, nil
}

// GetByIdentifier matches either the username or the email column so
// deployments can pick which one acts as the subject identifier.
func (r *users) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Relation("Roles").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("usr.username = ?", identifier).
				WhereOr("usr.email = ?", identifier)
		}).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(err, errors.CategoryNotFound, "user not found").
				WithCode(errors.CodeNotFound)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}

	return user, nil
}

func (r *users) ExistsByIdentifier(ctx context.Context, identifier string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*User)(nil)).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("usr.username = ?", identifier).
				WhereOr("usr.email = ?", identifier)
		}).
		Exists(ctx)

	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check user existence")
	}

	return exists, nil
}

// Create persists a new user plus its role grants. A taken username or
// email is a conflict, not a second row.
func (r *users) Create(ctx context.Context, user *User, roles ...string) (*User, error) {
	if user == nil {
		return nil, errors.New("user must not be nil", errors.CategoryBadInput)
	}

	for _, identifier := range []string{user.Username, user.Email} {
		if identifier == "" {
			continue
		}
		exists, err := r.ExistsByIdentifier(ctx, identifier)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUserAlreadyExists
		}
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to insert user")
		}

		for _, name := range roles {
			if name == "" {
				continue
			}

			role, err := getOrCreateRole(ctx, tx, name)
			if err != nil {
				return err
			}

			join := &UserToRole{UserID: user.ID, RoleID: role.ID}
			if _, err := tx.NewInsert().Model(join).Exec(ctx); err != nil {
				return errors.Wrap(err, errors.CategoryInternal, "failed to grant role")
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, user.ID)
}

func (r *users) List(ctx context.Context) ([]*User, error) {
	var records []*User
	err := r.db.NewSelect().
		Model(&records).
		Relation("Roles").
		Order("usr.id ASC").
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}

	return records, nil
}

func getOrCreateRole(ctx context.Context, tx bun.Tx, name string) (*Role, error) {
	role := &Role{Name: name}

	if _, err := tx.NewInsert().
		Model(role).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to ensure role")
	}

	// the insert may have been a no-op, reload to pick up the id
	role = new(Role)
	if err := tx.NewSelect().
		Model(role).
		Where("rol.name = ?", name).
		Limit(1).
		Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load role")
	}

	return role, nil
}

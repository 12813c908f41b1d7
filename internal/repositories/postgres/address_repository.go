package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domain "github.com/nueve-shop/api/internal/domain"
	platform "github.com/nueve-shop/api/internal/platform/postgres"
	"github.com/nueve-shop/api/internal/repositories"
)

const addressColumns = `
	id, user_id, name, phone, address_line1, address_line2,
	city, state, pincode, is_default, created_at, updated_at`

// AddressRepository persists delivery addresses.
type AddressRepository struct {
	db *platform.DB
}

// NewAddressRepository constructs an AddressRepository backed by the pool.
func NewAddressRepository(db *platform.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// FindByID resolves the address only when owned by userID.
func (r *AddressRepository) FindByID(ctx context.Context, userID, addressID string) (domain.Address, error) {
	row := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE id = $1 AND user_id = $2`,
		addressID, userID)

	address, err := scanAddress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Address{}, repositories.NewNotFound(fmt.Sprintf("address %s", addressID))
		}
		return domain.Address{}, repositories.NewInternal("select address", err)
	}

	return address, nil
}

// ListByUser returns the user's addresses, default first, newest next.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC`,
		userID)
	if err != nil {
		return nil, repositories.NewInternal("select addresses", err)
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, repositories.NewInternal("scan address", err)
		}
		addresses = append(addresses, address)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewInternal("iterate addresses", err)
	}

	return addresses, nil
}

// Insert writes a new address row.
func (r *AddressRepository) Insert(ctx context.Context, address domain.Address) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `
		INSERT INTO addresses (
			id, user_id, name, phone, address_line1, address_line2,
			city, state, pincode, is_default
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		address.ID, address.UserID, address.Name, address.Phone,
		address.AddressLine1, address.AddressLine2,
		address.City, address.State, address.Pincode, address.IsDefault)
	if err != nil {
		return wrapWriteError("insert address", err)
	}
	return nil
}

// Update rewrites the mutable fields of an owned address.
func (r *AddressRepository) Update(ctx context.Context, address domain.Address) error {
	tag, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE addresses
		SET name = $1, phone = $2, address_line1 = $3, address_line2 = $4,
			city = $5, state = $6, pincode = $7, is_default = $8,
			updated_at = now()
		WHERE id = $9 AND user_id = $10`,
		address.Name, address.Phone, address.AddressLine1, address.AddressLine2,
		address.City, address.State, address.Pincode, address.IsDefault,
		address.ID, address.UserID)
	if err != nil {
		return wrapWriteError("update address", err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.NewNotFound(fmt.Sprintf("address %s", address.ID))
	}
	return nil
}

// Delete removes an owned address. The orders foreign key is RESTRICT, so an
// address referenced by any order surfaces as a conflict instead of breaking
// historical orders.
func (r *AddressRepository) Delete(ctx context.Context, userID, addressID string) error {
	tag, err := r.db.Querier(ctx).Exec(ctx,
		`DELETE FROM addresses WHERE id = $1 AND user_id = $2`,
		addressID, userID)
	if err != nil {
		return wrapWriteError("delete address", err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.NewNotFound(fmt.Sprintf("address %s", addressID))
	}
	return nil
}

// ClearDefaults unsets is_default for the user's addresses, skipping exceptID
// when provided.
func (r *AddressRepository) ClearDefaults(ctx context.Context, userID, exceptID string) error {
	query := `UPDATE addresses SET is_default = FALSE, updated_at = now() WHERE user_id = $1 AND is_default`
	args := []any{userID}
	if exceptID != "" {
		query += ` AND id <> $2`
		args = append(args, exceptID)
	}

	if _, err := r.db.Querier(ctx).Exec(ctx, query, args...); err != nil {
		return wrapWriteError("clear default addresses", err)
	}
	return nil
}

// MarkDefault sets is_default on the target address when owned by the user.
func (r *AddressRepository) MarkDefault(ctx context.Context, userID, addressID string) error {
	tag, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE addresses
		SET is_default = TRUE, updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		addressID, userID)
	if err != nil {
		return wrapWriteError("mark default address", err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.NewNotFound(fmt.Sprintf("address %s", addressID))
	}
	return nil
}

func scanAddress(row pgx.Row) (domain.Address, error) {
	var a domain.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.Name, &a.Phone, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.State, &a.Pincode, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Address{}, err
	}
	return a, nil
}

// wrapWriteError categorises driver errors from INSERT/UPDATE/DELETE paths.
func wrapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return repositories.NewConflict(op, err)
		case "23503": // foreign_key_violation
			return repositories.NewConflict(op, err)
		}
	}
	return repositories.NewInternal(op, err)
}

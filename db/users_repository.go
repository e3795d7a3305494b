package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"backstage/entity"
)

func (u *unitOfWork) UserByID(ctx context.Context, userID string) (entity.User, error) {
	var user entity.User
	err := u.tx.GetContext(ctx, &user, `
		SELECT user_id, email, role, has_vip_access, has_premium_access, has_backstage_access
		FROM users
		WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, entity.ErrUserNotFound.WithMessage("user %s not found", userID)
	}
	if err != nil {
		return entity.User{}, fmt.Errorf("could not get user %s: %w", userID, err)
	}

	return user, nil
}

func (u *unitOfWork) SaveUser(ctx context.Context, user entity.User) error {
	_, err := u.tx.NamedExecContext(ctx, `
		INSERT INTO users (user_id, email, role)
		VALUES (:user_id, :email, :role)
		ON CONFLICT (user_id) DO UPDATE
		SET email = EXCLUDED.email, role = EXCLUDED.role
	`, user)
	if err != nil {
		return fmt.Errorf("could not save user %s: %w", user.UserID, err)
	}

	return nil
}

func (u *unitOfWork) UpdateUserAccess(ctx context.Context, userID string, access entity.UserAccess) error {
	res, err := u.tx.ExecContext(ctx, `
		UPDATE users
		SET has_vip_access = $2, has_premium_access = $3, has_backstage_access = $4
		WHERE user_id = $1
	`, userID, access.HasVIPAccess, access.HasPremiumAccess, access.HasBackstageAccess)
	if err != nil {
		return fmt.Errorf("could not update access of %s: %w", userID, err)
	}

	return expectAffected(res, entity.ErrUserNotFound.WithMessage("user %s not found", userID))
}

func expectAffected(res sql.Result, notFound error) error {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return notFound
	}

	return nil
}

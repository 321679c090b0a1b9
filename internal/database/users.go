package database

import (
	"context"

	"ewaste-exchange/internal/models"
)

// GetUsersByIDs returns the users with the given ids in no particular order
func (gdb *GormDB) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	for _, batch := range chunk(ids, inBatchSize) {
		var page []models.User
		if err := gdb.db.WithContext(ctx).Where("id IN ?", batch).Find(&page).Error; err != nil {
			return nil, err
		}
		users = append(users, page...)
	}
	return users, nil
}

// CreateUser inserts a user; a taken email yields ErrDuplicate
func (gdb *GormDB) CreateUser(ctx context.Context, u *models.User) error {
	return translate(gdb.db.WithContext(ctx).Create(u).Error)
}

// GetUserByEmail looks a user up by email
func (gdb *GormDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := gdb.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

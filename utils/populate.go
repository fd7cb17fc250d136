package utils

import (
	"context"
	"errors"
	"time"

	"neurovisa/db"
	"neurovisa/internal/logger"
	"neurovisa/models"
)

// DemoPassword is shared by all seeded accounts
const DemoPassword = "practice-visa"

var demoUsers = []models.User{
	{Email: "student@neurovisa.dev", FullName: "Asha Student", VisaType: "F-1 Student", TargetCountry: "USA"},
	{Email: "worker@neurovisa.dev", FullName: "Ravi Engineer", VisaType: "H-1B Work", TargetCountry: "USA"},
	{Email: "tourist@neurovisa.dev", FullName: "Meera Traveller", VisaType: "B1/B2 Tourist", TargetCountry: "Canada"},
}

// PopulateDemoUsers creates one account per question pool. Existing accounts are left alone.
func PopulateDemoUsers(ctx context.Context, store db.UserStore) (int, error) {
	hash, err := HashPassword(DemoPassword)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, u := range demoUsers {
		if _, err := store.GetUserByEmail(ctx, u.Email); err == nil {
			continue
		} else if !errors.Is(err, db.ErrNotFound) {
			return created, err
		}

		user := u
		user.HashedPassword = hash
		user.IsActive = true
		user.CreatedAt = time.Now().UTC()
		if err := store.CreateUser(ctx, &user); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				continue
			}
			return created, err
		}
		created++
	}

	if created > 0 {
		logger.Log.WithField("count", created).Info("Seeded demo users")
	}
	return created, nil
}

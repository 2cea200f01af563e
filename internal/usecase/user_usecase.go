package usecase

import (
	"context"
	"time"

	"trocly/internal/domain/entity"
	"trocly/internal/domain/repository"
	"trocly/pkg/errors"
)

type UserUseCase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{userRepo: userRepo}
}

type UpsertProfileInput struct {
	Name      string
	AvatarURL string
	Bio       string
	City      string
}

// UpsertProfile creates the profile document on first call and updates it on
// later ones. The document id is the auth uid.
func (uc *UserUseCase) UpsertProfile(ctx context.Context, userID string, input UpsertProfileInput) (*entity.User, error) {
	existing, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, "PROFILE_NOT_FOUND") && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	if existing == nil {
		user := &entity.User{
			ID:        userID,
			Name:      input.Name,
			AvatarURL: input.AvatarURL,
			Bio:       input.Bio,
			City:      input.City,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	existing.Name = input.Name
	existing.AvatarURL = input.AvatarURL
	existing.Bio = input.Bio
	existing.City = input.City
	existing.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// AgeGroup buckets a profile's numeric age into one of three reading tiers.
// Curated books carry the same labels so the catalog can be filtered per
// profile.
type AgeGroup string

const (
	// AgeGroupChild covers ages 4-11.
	AgeGroupChild AgeGroup = "child"

	// AgeGroupTeen covers ages 12-17.
	AgeGroupTeen AgeGroup = "teen"

	// AgeGroupAdult covers ages 18 and up.
	AgeGroupAdult AgeGroup = "adult"
)

// MinProfileAge is the youngest age a profile may be created with.
const MinProfileAge = 4

// DefaultAvatar is used when a profile is created without an avatar.
const DefaultAvatar = "default-avatar.png"

// AgeGroupForAge maps a numeric age to its reading tier.
// Returns ErrProfileAgeTooLow for ages below MinProfileAge.
func AgeGroupForAge(age int) (AgeGroup, error) {
	switch {
	case age < MinProfileAge:
		return "", ErrProfileAgeTooLow
	case age <= 11:
		return AgeGroupChild, nil
	case age <= 17:
		return AgeGroupTeen, nil
	default:
		return AgeGroupAdult, nil
	}
}

// ValidAgeGroup reports whether s is one of the three tier labels.
func ValidAgeGroup(s string) bool {
	switch AgeGroup(s) {
	case AgeGroupChild, AgeGroupTeen, AgeGroupAdult:
		return true
	}
	return false
}

// Profile is a named, age-scoped reading identity owned by a single user.
// Favorites are scoped to a profile.
type Profile struct {
	// ID is the unique identifier for the profile.
	ID string `json:"id"`

	// UserID is the owning user. Profiles are never shared.
	UserID string `json:"user_id"`

	// Name is the display name of the profile.
	Name string `json:"name"`

	// Avatar is an avatar image reference.
	Avatar string `json:"avatar"`

	// Age is the numeric age, >= MinProfileAge.
	Age int `json:"age"`

	// AgeGroup is derived from Age on every save. Callers cannot set it;
	// the persistence path recomputes it unconditionally.
	AgeGroup AgeGroup `json:"ageGroup"`

	// CreatedAt is the timestamp when the profile was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the profile was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile creates a profile for the given owner. The age group is
// derived here and re-derived by DeriveAgeGroup on every subsequent save.
func NewProfile(userID, name, avatar string, age int) (*Profile, error) {
	group, err := AgeGroupForAge(age)
	if err != nil {
		return nil, err
	}
	if avatar == "" {
		avatar = DefaultAvatar
	}
	now := time.Now().UTC()
	return &Profile{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Avatar:    avatar,
		Age:       age,
		AgeGroup:  group,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DeriveAgeGroup recomputes AgeGroup from Age. Repositories call this
// immediately before every write so a caller-supplied value never persists.
func (p *Profile) DeriveAgeGroup() error {
	group, err := AgeGroupForAge(p.Age)
	if err != nil {
		return err
	}
	p.AgeGroup = group
	return nil
}

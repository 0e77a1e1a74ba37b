package models

import "time"

// User is a marketplace actor. Tutors and center owners carry the profile
// fields learners see in the directory; PricePerHour seeds booking prices.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Bio          string    `json:"bio,omitempty"`
	Subjects     []string  `json:"subjects,omitempty"`
	Languages    []string  `json:"languages,omitempty"`
	PricePerHour float64   `json:"price_per_hour,omitempty"`
	Rating       float64   `json:"rating,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TutorFilter narrows the tutor directory. Zero values mean "no constraint".
type TutorFilter struct {
	Language  string
	Subject   string
	PriceMin  float64
	PriceMax  float64
	RatingMin float64
}

// Matches applies the filter to a tutor profile.
func (f TutorFilter) Matches(u *User) bool {
	if !u.Role.Capabilities().IsTutor {
		return false
	}
	if f.Language != "" && !contains(u.Languages, f.Language) {
		return false
	}
	if f.Subject != "" && !contains(u.Subjects, f.Subject) {
		return false
	}
	if f.PriceMin > 0 && u.PricePerHour < f.PriceMin {
		return false
	}
	if f.PriceMax > 0 && u.PricePerHour > f.PriceMax {
		return false
	}
	if f.RatingMin > 0 && u.Rating < f.RatingMin {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

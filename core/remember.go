package core

import "context"

// RememberedEmail keeps the last email used with "remember me" in a durable
// per-browser region so the login form can be prefilled. Passwords are never kept.
type RememberedEmail struct {
	region Storage
}

func NewRememberedEmail(region Storage) *RememberedEmail {
	return &RememberedEmail{region: region}
}

func (r *RememberedEmail) Save(ctx context.Context, email string) error {
	return r.region.Set(ctx, RememberedEmailKey, email)
}

// Load returns "" when nothing was remembered.
func (r *RememberedEmail) Load(ctx context.Context) (string, error) {
	v, _, err := r.region.Get(ctx, RememberedEmailKey)
	return v, err
}

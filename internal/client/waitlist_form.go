package client

import (
	"context"
	"sync"
)

const (
	waitlistJoined  = "Thanks for joining our waitlist!"
	waitlistFailure = "Something went wrong. Please try again."
)

// WaitlistForm mirrors the landing page signup. The email field is cleared
// after a successful submit.
type WaitlistForm struct {
	FormState

	api   *APIClient
	mu    sync.Mutex
	email string
}

func NewWaitlistForm(api *APIClient) *WaitlistForm {
	return &WaitlistForm{api: api}
}

func (f *WaitlistForm) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = email
}

func (f *WaitlistForm) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

func (f *WaitlistForm) Submit(ctx context.Context) error {
	if err := f.begin(); err != nil {
		return err
	}

	if _, err := f.api.JoinWaitlist(ctx, f.Email()); err != nil {
		f.fail(errorMessage(err, waitlistFailure))
		return err
	}

	f.SetEmail("")
	f.succeed(waitlistJoined)
	return nil
}

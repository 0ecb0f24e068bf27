package client

import (
	"context"
	"sync"
)

const preferencesSaved = "Preferences saved successfully!"

// PreferencesForm mirrors the dashboard's dietary preferences form. Tags are
// kept in the order they were checked.
type PreferencesForm struct {
	FormState

	api       *APIClient
	mu        sync.Mutex
	dietGoals []string
	allergies []string
	custom    string
}

func NewPreferencesForm(api *APIClient) *PreferencesForm {
	return &PreferencesForm{api: api}
}

// Load fills the form from the saved preferences.
func (f *PreferencesForm) Load(ctx context.Context) error {
	prefs, err := f.api.GetPreferences(ctx)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dietGoals = append([]string(nil), prefs.DietGoals...)
	f.allergies = append([]string(nil), prefs.Allergies...)
	f.custom = prefs.CustomPreferences
	return nil
}

func (f *PreferencesForm) SetDietGoal(goal string, checked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dietGoals = toggle(f.dietGoals, goal, checked)
}

func (f *PreferencesForm) SetAllergy(allergy string, checked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allergies = toggle(f.allergies, allergy, checked)
}

func (f *PreferencesForm) SetCustomPreferences(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.custom = text
}

// Values returns what Submit would send.
func (f *PreferencesForm) Values() Preferences {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Preferences{
		DietGoals:         append([]string{}, f.dietGoals...),
		Allergies:         append([]string{}, f.allergies...),
		CustomPreferences: f.custom,
	}
}

// Submit saves the form. It returns ErrInFlight if a save is already running;
// otherwise the outcome is recorded in the form state and also returned.
func (f *PreferencesForm) Submit(ctx context.Context) error {
	if err := f.begin(); err != nil {
		return err
	}

	_, err := f.api.SavePreferences(ctx, f.Values())
	if err != nil {
		f.fail(errorMessage(err, "Failed to save preferences"))
		return err
	}
	f.succeed(preferencesSaved)
	return nil
}

func toggle(tags []string, tag string, checked bool) []string {
	idx := -1
	for i, t := range tags {
		if t == tag {
			idx = i
			break
		}
	}
	switch {
	case checked && idx < 0:
		return append(tags, tag)
	case !checked && idx >= 0:
		return append(tags[:idx:idx], tags[idx+1:]...)
	default:
		return tags
	}
}

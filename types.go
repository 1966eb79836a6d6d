package foodagent

import (
	"context"
	"net/http"

	"foodagent/catalog"
	"foodagent/profile"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

// CatalogProvider exposes the read-only catalog collections, fixed for the
// lifetime of the process.
type CatalogProvider interface {
	Products() []catalog.Product
	Meals() []catalog.Meal
}

// ProfileProvider returns the active organization profile by value, or nil
// when none has been configured.
type ProfileProvider interface {
	Profile(ctx context.Context) (*profile.OrganizationProfile, error)
}

// StaticProfile is a ProfileProvider that always returns the same profile.
type StaticProfile struct {
	P *profile.OrganizationProfile
}

func (s StaticProfile) Profile(context.Context) (*profile.OrganizationProfile, error) {
	return s.P, nil
}

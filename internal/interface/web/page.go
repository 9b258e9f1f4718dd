package web

import (
	"github.com/oksasatya/annex-account/internal/application"
	"github.com/oksasatya/annex-account/internal/domain/account"
	"github.com/oksasatya/annex-account/internal/domain/entity"
	"github.com/oksasatya/annex-account/pkg/helpers"
)

// Page is the data every template receives.
type Page struct {
	Title     string
	Brand     string
	Path      string
	Nav       []account.NavItem
	Menu      []account.NavItem
	Session   application.SessionState
	User      *entity.IdentityUser
	Email     string
	Flash     *helpers.Flash
	SignInURL string
	SignUpURL string

	// account and settings
	Membership string
	Settings   *application.SettingsView
	Pending    *entity.EmailAddress
}

// NewPage fills the shell fields shared by every page.
func NewPage(title, path string, st application.SessionState, u *entity.IdentityUser) Page {
	p := Page{
		Title:   title,
		Brand:   account.Brand,
		Path:    path,
		Nav:     account.Navigation(path),
		Menu:    account.AccountMenu(path),
		Session: st,
		User:    u,
	}
	if u != nil && len(u.EmailAddresses) > 0 {
		p.Email = u.EmailAddresses[0].EmailAddress
	}
	return p
}

package account

import "strings"

const Brand = "ANNEX"

type NavItem struct {
	Label  string
	Href   string
	Icon   string
	Active bool
	Center bool // rendered as the raised middle button on the bottom bar
}

var navItems = []NavItem{
	{Label: "Dashboard", Href: "/dashboard", Icon: "home"},
	{Label: "Search", Href: "/search", Icon: "search"},
	{Label: "Ask", Href: "/ask", Icon: "sparkles", Center: true},
	{Label: "News", Href: "/news", Icon: "newspaper"},
	{Label: "Wallet", Href: "/wallet", Icon: "wallet"},
}

var menuItems = []NavItem{
	{Label: "Account", Href: "/account", Icon: "user"},
	{Label: "Settings", Href: "/settings", Icon: "settings"},
	{Label: "Billing", Href: "/settings/billing", Icon: "credit-card"},
}

// Navigation returns the sidebar / bottom bar entries with the one matching path marked active.
func Navigation(path string) []NavItem {
	return mark(navItems, path)
}

// AccountMenu returns the header dropdown entries; sign-out is a form, not a link.
func AccountMenu(path string) []NavItem {
	return mark(menuItems, path)
}

func mark(items []NavItem, path string) []NavItem {
	out := make([]NavItem, len(items))
	for i, it := range items {
		it.Active = path == it.Href || strings.HasPrefix(path, it.Href+"/")
		out[i] = it
	}
	return out
}

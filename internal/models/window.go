package models

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

type WindowGeometry struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowRole names one of the popup windows the portal drives.
type WindowRole string

const (
	RoleReporting WindowRole = "reporting"
	RoleViewer    WindowRole = "viewer"
)

var WindowRoles = []WindowRole{RoleReporting, RoleViewer}

func (r WindowRole) Valid() bool {
	return r == RoleReporting || r == RoleViewer
}

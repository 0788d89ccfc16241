package core

// Page paths linked from the header profile dropdown.
const (
	LoginPagePath         = "Pags/login.html"
	CreateAccountPagePath = "Pags/create-account.html"
	ProfilePagePath       = "Pags/perfil.html"
)

// PanelAction is a link or button rendered in the dropdown.
type PanelAction struct {
	Label  string `json:"label"`
	Href   string `json:"href,omitempty"`
	Action string `json:"action,omitempty"` // client-side action, e.g. "logout"
}

// ProfilePanel is the view model of the header profile dropdown.
type ProfilePanel struct {
	LoggedIn bool          `json:"loggedIn"`
	Username string        `json:"username,omitempty"`
	Email    string        `json:"email,omitempty"`
	Info     string        `json:"info,omitempty"`
	Actions  []PanelAction `json:"actions"`
}

// BuildProfilePanel renders the dropdown for the current session user (nil when logged out).
func BuildProfilePanel(u *UserRecord) ProfilePanel {
	if u == nil {
		return ProfilePanel{
			Info: "No has iniciado sesión.",
			Actions: []PanelAction{
				{Label: "Iniciar sesión", Href: LoginPagePath},
				{Label: "Crear cuenta", Href: CreateAccountPagePath},
			},
		}
	}
	return ProfilePanel{
		LoggedIn: true,
		Username: u.Username,
		Email:    u.Email,
		Actions: []PanelAction{
			{Label: "Mi cuenta", Href: ProfilePagePath},
			// after logout the page navigates to the login form
			{Label: "Cerrar sesión", Href: LoginPagePath, Action: "logout"},
		},
	}
}

package views

// PageMeta carries per-page settings into the page shell.
type PageMeta struct {
	Title     string
	Lang      string // html lang attribute (default "en")
	CSRFToken string // read by live.js for the refresh request
	LiveURL   string // websocket path; empty disables live updates
}


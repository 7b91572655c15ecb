package mcp

// DisplayInfo describes one detected display and its authorization state.
type DisplayInfo struct {
	Identity   string  `json:"identity"`
	Connector  string  `json:"connector"`
	Make       string  `json:"make"`
	Model      string  `json:"model"`
	Serial     string  `json:"serial"`
	Mode       string  `json:"mode"`
	RefreshHz  float64 `json:"refresh_hz"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Scale      float64 `json:"scale"`
	Active     bool    `json:"active"`
	Known      bool    `json:"known"`
	Authorized bool    `json:"authorized"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []DisplayInfo `json:"displays"`
}

// AuthorizeDisplayInput is the input for the authorize_display tool.
type AuthorizeDisplayInput struct {
	Identity string `json:"identity" jsonschema:"required,Stable display identity (make-model-serial) as reported by list_displays"`
}

// AuthorizeDisplayOutput is the output for the authorize_display tool.
type AuthorizeDisplayOutput struct {
	Identity string `json:"identity"`
}

// RevokeDisplayInput is the input for the revoke_display tool.
type RevokeDisplayInput struct {
	Identity string `json:"identity" jsonschema:"required,Stable display identity to revoke"`
}

// RevokeDisplayOutput is the output for the revoke_display tool.
type RevokeDisplayOutput struct {
	Identity string `json:"identity"`
}

// ForgetDisplayInput is the input for the forget_display tool.
type ForgetDisplayInput struct {
	Identity string `json:"identity" jsonschema:"required,Stable display identity to remove from the authorization table"`
}

// ForgetDisplayOutput is the output for the forget_display tool.
type ForgetDisplayOutput struct {
	Identity string `json:"identity"`
}

// ReconcileInput is the input for the reconcile tool.
type ReconcileInput struct{}

// ReconcileOutput is the output for the reconcile tool.
type ReconcileOutput struct {
	Detected    int    `json:"detected"`
	KnownActive int    `json:"known_active"`
	Unknown     int    `json:"unknown"`
	Disabled    int    `json:"disabled"`
	FailSafe    string `json:"fail_safe,omitempty"`
}

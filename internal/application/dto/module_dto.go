package dto

// ModuleResponse entrada del catálogo.
type ModuleResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	IsCore   bool   `json:"is_core"`
}

// MatrixResponse matriz rol→módulos de la empresa.
// Si IsCustomized es false, cada rol aparece con el catálogo completo.
type MatrixResponse struct {
	IsCustomized   bool                `json:"isCustomized"`
	CompanyModules []ModuleResponse    `json:"companyModules"`
	RoleModules    map[string][]string `json:"roleModules"`
}

// ReplaceMatrixRequest reemplazo completo de la matriz. Un mapa sin módulos en ningún rol equivale a reset.
type ReplaceMatrixRequest struct {
	RoleModules map[string][]string `json:"roleModules"`
}

// OverrideItem un override grant/revoke.
type OverrideItem struct {
	ModuleID     string `json:"module_id"`
	OverrideType string `json:"override_type"`
}

// OverridesResponse overrides vigentes de un usuario.
type OverridesResponse struct {
	UserID    string         `json:"user_id"`
	Overrides []OverrideItem `json:"overrides"`
}

// ReplaceOverridesRequest reemplazo completo de los overrides de un usuario.
type ReplaceOverridesRequest struct {
	Overrides []OverrideItem `json:"overrides"`
}

// ToggleModuleRequest cambio de visibilidad de un módulo desde el editor.
type ToggleModuleRequest struct {
	Enabled *bool `json:"enabled"`
}

// UserModuleItem fila del editor de módulos de un usuario.
type UserModuleItem struct {
	ModuleID string `json:"module_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	FromRole bool   `json:"from_role"`
	Enabled  bool   `json:"enabled"`
	State    string `json:"state"` // inherited | granted | revoked
}

// UserModulesResponse vista del editor para un usuario.
type UserModulesResponse struct {
	UserID  string           `json:"user_id"`
	Role    string           `json:"role"`
	Modules []UserModuleItem `json:"modules"`
}

// ToggleModuleResponse resultado de un toggle: la escritura aplicada y el estado final.
type ToggleModuleResponse struct {
	ModuleID string `json:"module_id"`
	Enabled  bool   `json:"enabled"`
	State    string `json:"state"`
	Applied  string `json:"applied"` // noop | grant | revoke | delete
}

// ResolvedModulesResponse módulos visibles para un usuario.
type ResolvedModulesResponse struct {
	UserID  string   `json:"user_id"`
	Modules []string `json:"modules"`
}

// CleanupResponse resultado de la limpieza de módulos que salieron del catálogo.
type CleanupResponse struct {
	OrphanModules      []string `json:"orphan_modules"`
	OverridesRemoved   int64    `json:"overrides_removed"`
	MatrixRowsModified int      `json:"matrix_rows_modified"`
}

// RolesResponse roles que el actor puede asignar, administrar e invitar.
type RolesResponse struct {
	Role            string   `json:"role"`
	Assignable      []string `json:"assignable"`
	Manageable      []string `json:"manageable"`
	TeamInvitable   []string `json:"team_invitable"`
	ClientInvitable []string `json:"client_invitable"`
}

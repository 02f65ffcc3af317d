package entity

import "time"

// RoleModuleConfig es una fila de la matriz rol→módulos de una empresa.
// Una fila con ModuleIDs vacío es válida: el rol quedó personalizado sin módulos.
type RoleModuleConfig struct {
	CompanyID string
	Role      Role
	ModuleIDs []string
	UpdatedAt time.Time
}

// MatrixState es la matriz de una empresa como unión etiquetada:
// DefaultMatrix (sin filas: todo habilitado para todos) o CustomizedMatrix (opt-in explícito por rol).
type MatrixState interface {
	isMatrixState()
}

// DefaultMatrix: la empresa nunca personalizó la matriz.
type DefaultMatrix struct{}

// CustomizedMatrix: la empresa tiene al menos una fila. Un rol ausente no ve ningún módulo.
type CustomizedMatrix struct {
	Roles map[Role][]string
}

func (DefaultMatrix) isMatrixState()    {}
func (CustomizedMatrix) isMatrixState() {}

// IsCustomized informa si el estado es CustomizedMatrix.
func IsCustomized(s MatrixState) bool {
	_, ok := s.(CustomizedMatrix)
	return ok
}

// MatrixFromConfigs construye el estado a partir de las filas persistidas.
func MatrixFromConfigs(rows []RoleModuleConfig) MatrixState {
	if len(rows) == 0 {
		return DefaultMatrix{}
	}
	roles := make(map[Role][]string, len(rows))
	for _, row := range rows {
		ids := make([]string, len(row.ModuleIDs))
		copy(ids, row.ModuleIDs)
		roles[row.Role] = ids
	}
	return CustomizedMatrix{Roles: roles}
}

// OverrideType es el tipo de excepción por usuario.
type OverrideType string

const (
	OverrideGrant  OverrideType = "grant"
	OverrideRevoke OverrideType = "revoke"
)

// Valid informa si el tipo de override es grant o revoke.
func (t OverrideType) Valid() bool {
	return t == OverrideGrant || t == OverrideRevoke
}

// ModuleOverride es una excepción (grant/revoke) sobre la base del rol para un usuario y un módulo.
type ModuleOverride struct {
	CompanyID    string
	UserID       string
	ModuleID     string
	OverrideType OverrideType
	CreatedBy    string
	CreatedAt    time.Time
}

// OverrideState es el estado derivado que muestra el editor para cada módulo. No se persiste.
type OverrideState string

const (
	OverrideInherited OverrideState = "inherited"
	OverrideGranted   OverrideState = "granted"
	OverrideRevoked   OverrideState = "revoked"
)

package access

import (
	"context"
	"fmt"
	"time"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/dto"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/access"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
	"github.com/marianoberton/marketpaper-demo-sub001/pkg/logger"
)

// Rol mínimo para leer y para editar la matriz de la empresa.
const (
	matrixReadRole  = entity.RoleManager
	matrixWriteRole = entity.RoleAdmin
)

// CatalogInvalidator lo implementa el caché de catálogo; la limpieza lo usa para releer el catálogo vigente.
type CatalogInvalidator interface {
	Invalidate(companyID string)
}

// UseCase orquesta matriz rol→módulos, overrides por usuario y resolución de módulos visibles.
// Las reglas de resolución viven en domain/access; acá solo hay autorización, validación y persistencia.
type UseCase struct {
	catalog   repository.ModuleCatalog
	roles     repository.RoleModuleRepository
	overrides repository.OverrideRepository
	users     repository.UserRepository
	tx        TxRunner
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	catalog repository.ModuleCatalog,
	roles repository.RoleModuleRepository,
	overrides repository.OverrideRepository,
	users repository.UserRepository,
	tx TxRunner,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		catalog:   catalog,
		roles:     roles,
		overrides: overrides,
		users:     users,
		tx:        tx,
		log:       log.Component("module_access"),
		now:       time.Now,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo y matriz
// ──────────────────────────────────────────────────────────────────────────────

// GetCatalog devuelve el catálogo de la empresa. Cualquier miembro puede verlo.
func (uc *UseCase) GetCatalog(ctx context.Context, actor entity.Actor, companyID string) ([]dto.ModuleResponse, error) {
	if err := sameCompany(actor, companyID); err != nil {
		return nil, err
	}
	catalog, err := uc.catalog.ListModules(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return toModuleResponses(catalog), nil
}

// GetMatrix devuelve la matriz. En una empresa sin personalizar cada rol aparece con el catálogo completo.
func (uc *UseCase) GetMatrix(ctx context.Context, actor entity.Actor, companyID string) (*dto.MatrixResponse, error) {
	if err := uc.requireRole(actor, companyID, matrixReadRole); err != nil {
		return nil, err
	}
	catalog, err := uc.catalog.ListModules(ctx, companyID)
	if err != nil {
		return nil, err
	}
	state, err := uc.matrixState(ctx, companyID)
	if err != nil {
		return nil, err
	}

	out := &dto.MatrixResponse{
		IsCustomized:   entity.IsCustomized(state),
		CompanyModules: toModuleResponses(catalog),
		RoleModules:    make(map[string][]string),
	}
	switch m := state.(type) {
	case entity.CustomizedMatrix:
		for role, ids := range m.Roles {
			out.RoleModules[string(role)] = append([]string{}, ids...)
		}
	default:
		all := entity.ModuleIDs(catalog)
		for _, role := range entity.Roles() {
			out.RoleModules[string(role)] = append([]string{}, all...)
		}
	}
	return out, nil
}

// ReplaceMatrix reemplaza la matriz completa en una transacción.
// Un mapa sin roles se interpreta como reset a la matriz por defecto; un rol presente con
// lista vacía queda guardado como fila vacía y la empresa sigue personalizada.
// En la misma transacción se borran los overrides que la nueva matriz vuelve redundantes.
func (uc *UseCase) ReplaceMatrix(ctx context.Context, actor entity.Actor, companyID string, roleModules map[string][]string) error {
	if err := uc.requireRole(actor, companyID, matrixWriteRole); err != nil {
		return err
	}
	if len(roleModules) == 0 {
		return uc.ResetToDefault(ctx, actor, companyID)
	}
	catalog, err := uc.catalog.ListModules(ctx, companyID)
	if err != nil {
		return err
	}
	rows, err := buildMatrixRows(companyID, roleModules, catalog, uc.now())
	if err != nil {
		return err
	}
	state := entity.MatrixFromConfigs(rows)

	var pruned int
	err = uc.tx.RunAccess(ctx, func(roleRepo repository.RoleModuleRepository, overrideRepo repository.OverrideRepository) error {
		if err := roleRepo.DeleteByCompany(ctx, companyID); err != nil {
			return err
		}
		for i := range rows {
			if err := roleRepo.Upsert(ctx, &rows[i]); err != nil {
				return err
			}
		}
		list, err := overrideRepo.ListByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		pruned, err = uc.pruneRedundant(ctx, overrideRepo, catalog, state, list, func(userID string) (*entity.User, error) {
			return uc.users.GetByID(ctx, companyID, userID)
		})
		return err
	})
	if err != nil {
		return err
	}
	accessChangesTotal.WithLabelValues("matrix_replace").Inc()
	if pruned > 0 {
		accessChangesTotal.WithLabelValues("overrides_prune").Add(float64(pruned))
	}
	uc.log.Info().Str("company_id", companyID).Str("actor_id", actor.UserID).Int("roles", len(rows)).
		Int("overrides_pruned", pruned).Msg("matriz de módulos reemplazada")
	return nil
}

// ResetToDefault borra la matriz: todos los roles vuelven a ver el catálogo completo.
// Los overrides de usuarios no se tocan.
func (uc *UseCase) ResetToDefault(ctx context.Context, actor entity.Actor, companyID string) error {
	if err := uc.requireRole(actor, companyID, matrixWriteRole); err != nil {
		return err
	}
	if err := uc.roles.DeleteByCompany(ctx, companyID); err != nil {
		return err
	}
	accessChangesTotal.WithLabelValues("matrix_reset").Inc()
	uc.log.Info().Str("company_id", companyID).Str("actor_id", actor.UserID).Msg("matriz de módulos restablecida")
	return nil
}

// PruneUserOverrides borra los overrides del usuario que su rol actual ya vuelve redundantes.
// Se llama después de un cambio de rol; devuelve cuántos borró.
func (uc *UseCase) PruneUserOverrides(ctx context.Context, companyID, userID string) (int, error) {
	user, err := uc.users.GetByID(ctx, companyID, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, domain.ErrUserNotFound
	}
	catalog, err := uc.catalog.ListModules(ctx, companyID)
	if err != nil {
		return 0, err
	}
	var pruned int
	err = uc.tx.RunAccess(ctx, func(roleRepo repository.RoleModuleRepository, overrideRepo repository.OverrideRepository) error {
		rows, err := roleRepo.ListByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		list, err := overrideRepo.ListByUser(ctx, companyID, userID)
		if err != nil {
			return err
		}
		pruned, err = uc.pruneRedundant(ctx, overrideRepo, catalog, entity.MatrixFromConfigs(rows), list, func(string) (*entity.User, error) {
			return user, nil
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		accessChangesTotal.WithLabelValues("overrides_prune").Add(float64(pruned))
		uc.log.Info().Str("company_id", companyID).Str("user_id", userID).Str("role", string(user.Role)).
			Int("overrides_pruned", pruned).Msg("overrides redundantes borrados tras cambio de rol")
	}
	return pruned, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Overrides por usuario
// ──────────────────────────────────────────────────────────────────────────────

// GetUserOverrides devuelve los overrides de un usuario (el propio o uno administrable).
func (uc *UseCase) GetUserOverrides(ctx context.Context, actor entity.Actor, companyID, userID string) (*dto.OverridesResponse, error) {
	if _, err := uc.targetUser(ctx, actor, companyID, userID, false); err != nil {
		return nil, err
	}
	list, err := uc.overrides.ListByUser(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	return &dto.OverridesResponse{UserID: userID, Overrides: toOverrideItems(list)}, nil
}

// ReplaceUserOverrides reemplaza todos los overrides del usuario. Los redundantes respecto
// de la base del rol se descartan antes de persistir; devuelve lo que quedó guardado.
func (uc *UseCase) ReplaceUserOverrides(ctx context.Context, actor entity.Actor, companyID, userID string, items []dto.OverrideItem) (*dto.OverridesResponse, error) {
	target, err := uc.targetUser(ctx, actor, companyID, userID, true)
	if err != nil {
		return nil, err
	}
	catalog, err := uc.catalog.ListModules(ctx, companyID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	in, err := buildOverrides(companyID, userID, actor.UserID, items, catalog, now)
	if err != nil {
		return nil, err
	}
	state, err := uc.matrixState(ctx, companyID)
	if err != nil {
		return nil, err
	}
	kept := access.Prune(in, access.Baseline(catalog, state, target.Role))

	err = uc.tx.RunAccess(ctx, func(_ repository.RoleModuleRepository, overrideRepo repository.OverrideRepository) error {
		if err := overrideRepo.DeleteByUser(ctx, companyID, userID); err != nil {
			return err
		}
		for i := range kept {
			if err := overrideRepo.Upsert(ctx, &kept[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	accessChangesTotal.WithLabelValues("overrides_replace").Inc()
	uc.log.Info().Str("company_id", companyID).Str("user_id", userID).Str("actor_id", actor.UserID).
		Int("received", len(in)).Int("stored", len(kept)).Msg("overrides de usuario reemplazados")
	return &dto.OverridesResponse{UserID: userID, Overrides: toOverrideItems(kept)}, nil
}

// ResetUserOverrides borra todos los overrides del usuario: vuelve a ver exactamente la base de su rol.
func (uc *UseCase) ResetUserOverrides(ctx context.Context, actor entity.Actor, companyID, userID string) error {
	if _, err := uc.targetUser(ctx, actor, companyID, userID, true); err != nil {
		return err
	}
	if err := uc.overrides.DeleteByUser(ctx, companyID, userID); err != nil {
		return err
	}
	accessChangesTotal.WithLabelValues("overrides_reset").Inc()
	uc.log.Info().Str("company_id", companyID).Str("user_id", userID).Str("actor_id", actor.UserID).Msg("overrides de usuario restablecidos")
	return nil
}

// ToggleUserModule deja el módulo habilitado o no para el usuario escribiendo, borrando o
// sin tocar el override según corresponda. Nunca deja un override redundante.
func (uc *UseCase) ToggleUserModule(ctx context.Context, actor entity.Actor, companyID, userID, moduleID string, enable bool) (*dto.ToggleModuleResponse, error) {
	target, err := uc.targetUser(ctx, actor, companyID, userID, true)
	if err != nil {
		return nil, err
	}
	if !entity.ValidModuleID(moduleID) {
		return nil, domain.NewValidationError("module_id", "formato inválido")
	}
	catalog, err := uc.catalog.ListModules(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if _, ok := access.CatalogIndex(catalog)[moduleID]; !ok {
		return nil, fmt.Errorf("%s: %w", moduleID, domain.ErrModuleNotFound)
	}
	baseline, idx, err := uc.userBaseline(ctx, companyID, target, catalog)
	if err != nil {
		return nil, err
	}

	op := access.Toggle(baseline, idx, moduleID, enable)
	switch op {
	case access.ToggleWriteGrant, access.ToggleWriteRevoke:
		t := entity.OverrideGrant
		if op == access.ToggleWriteRevoke {
			t = entity.OverrideRevoke
		}
		o := &entity.ModuleOverride{
			CompanyID: companyID, UserID: userID, ModuleID: moduleID,
			OverrideType: t, CreatedBy: actor.UserID, CreatedAt: uc.now(),
		}
		if err := uc.overrides.Upsert(ctx, o); err != nil {
			return nil, err
		}
		idx[moduleID] = t
	case access.ToggleDelete:
		if err := uc.overrides.Delete(ctx, companyID, userID, moduleID); err != nil {
			return nil, err
		}
		delete(idx, moduleID)
	}
	if op != access.ToggleNoop {
		accessChangesTotal.WithLabelValues("toggle").Inc()
		uc.log.Info().Str("company_id", companyID).Str("user_id", userID).Str("module_id", moduleID).
			Str("op", string(op)).Bool("enabled", enable).Msg("módulo de usuario actualizado")
	}
	return &dto.ToggleModuleResponse{
		ModuleID: moduleID,
		Enabled:  access.Enabled(moduleID, baseline, idx),
		State:    string(access.StateOf(moduleID, idx)),
		Applied:  string(op),
	}, nil
}

// UserModuleView arma el editor: por cada módulo del catálogo, si viene del rol, si está habilitado
// y el estado del override.
func (uc *UseCase) UserModuleView(ctx context.Context, actor entity.Actor, companyID, userID string) (*dto.UserModulesResponse, error) {
	target, err := uc.targetUser(ctx, actor, companyID, userID, false)
	if err != nil {
		return nil, err
	}
	catalog, err := uc.catalog.ListModules(ctx, companyID)
	if err != nil {
		return nil, err
	}
	baseline, idx, err := uc.userBaseline(ctx, companyID, target, catalog)
	if err != nil {
		return nil, err
	}
	out := &dto.UserModulesResponse{UserID: userID, Role: string(target.Role), Modules: make([]dto.UserModuleItem, 0, len(catalog))}
	for _, m := range catalog {
		out.Modules = append(out.Modules, dto.UserModuleItem{
			ModuleID: m.ID,
			Name:     m.Name,
			Category: m.Category,
			FromRole: baseline.Has(m.ID),
			Enabled:  access.Enabled(m.ID, baseline, idx),
			State:    string(access.StateOf(m.ID, idx)),
		})
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolución
// ──────────────────────────────────────────────────────────────────────────────

// ResolveUserModules devuelve los módulos visibles del usuario (el propio o uno administrable).
func (uc *UseCase) ResolveUserModules(ctx context.Context, actor entity.Actor, companyID, userID string) (*dto.ResolvedModulesResponse, error) {
	target, err := uc.targetUser(ctx, actor, companyID, userID, false)
	if err != nil {
		return nil, err
	}
	set, err := uc.resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	return &dto.ResolvedModulesResponse{UserID: userID, Modules: set.Sorted()}, nil
}

// Resolve calcula los módulos visibles de un usuario sin chequeos de actor.
// Es el punto de entrada del middleware de módulo (el actor es el propio usuario).
func (uc *UseCase) Resolve(ctx context.Context, companyID, userID string) (access.ModuleSet, error) {
	user, err := uc.users.GetByID(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return uc.resolve(ctx, user)
}

func (uc *UseCase) resolve(ctx context.Context, user *entity.User) (access.ModuleSet, error) {
	catalog, err := uc.catalog.ListModules(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	state, err := uc.matrixState(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	overrides, err := uc.overrides.ListByUser(ctx, user.CompanyID, user.ID)
	if err != nil {
		return nil, err
	}
	resolutionsTotal.Inc()
	return access.Resolve(catalog, state, user.Role, overrides), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Limpieza de módulos dados de baja
// ──────────────────────────────────────────────────────────────────────────────

// CleanupCatalog borra overrides y entradas de matriz que apuntan a módulos que ya no están
// en el catálogo. La resolución ya los ignora; esto solo deja la base de datos prolija.
func (uc *UseCase) CleanupCatalog(ctx context.Context, actor entity.Actor, companyID string) (*dto.CleanupResponse, error) {
	if err := uc.requireRole(actor, companyID, matrixWriteRole); err != nil {
		return nil, err
	}
	if inv, ok := uc.catalog.(CatalogInvalidator); ok {
		inv.Invalidate(companyID)
	}
	catalog, err := uc.catalog.ListModules(ctx, companyID)
	if err != nil {
		return nil, err
	}
	inCatalog := access.CatalogIndex(catalog)

	report := &dto.CleanupResponse{OrphanModules: []string{}}
	orphanSet := make(map[string]struct{})
	addOrphans := func(ids []string) {
		for _, id := range access.Orphans(catalog, ids) {
			if _, seen := orphanSet[id]; !seen {
				orphanSet[id] = struct{}{}
				report.OrphanModules = append(report.OrphanModules, id)
			}
		}
	}

	err = uc.tx.RunAccess(ctx, func(roleRepo repository.RoleModuleRepository, overrideRepo repository.OverrideRepository) error {
		rows, err := roleRepo.ListByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		for i := range rows {
			addOrphans(rows[i].ModuleIDs)
			kept := make([]string, 0, len(rows[i].ModuleIDs))
			for _, id := range rows[i].ModuleIDs {
				if _, ok := inCatalog[id]; ok {
					kept = append(kept, id)
				}
			}
			if len(kept) == len(rows[i].ModuleIDs) {
				continue
			}
			rows[i].ModuleIDs = kept
			rows[i].UpdatedAt = uc.now()
			if err := roleRepo.Upsert(ctx, &rows[i]); err != nil {
				return err
			}
			report.MatrixRowsModified++
		}

		ids, err := overrideRepo.DistinctModules(ctx, companyID)
		if err != nil {
			return err
		}
		addOrphans(ids)
		n, err := overrideRepo.DeleteModules(ctx, companyID, access.Orphans(catalog, ids))
		if err != nil {
			return err
		}
		report.OverridesRemoved = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	accessChangesTotal.WithLabelValues("cleanup").Inc()
	uc.log.Info().Str("company_id", companyID).Strs("orphans", report.OrphanModules).
		Int64("overrides_removed", report.OverridesRemoved).Int("matrix_rows_modified", report.MatrixRowsModified).
		Msg("limpieza de módulos fuera de catálogo")
	return report, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func (uc *UseCase) matrixState(ctx context.Context, companyID string) (entity.MatrixState, error) {
	rows, err := uc.roles.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return entity.MatrixFromConfigs(rows), nil
}

func (uc *UseCase) userBaseline(ctx context.Context, companyID string, user *entity.User, catalog []entity.Module) (access.ModuleSet, map[string]entity.OverrideType, error) {
	state, err := uc.matrixState(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}
	overrides, err := uc.overrides.ListByUser(ctx, companyID, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return access.Baseline(catalog, state, user.Role), access.OverrideIndex(overrides), nil
}

func (uc *UseCase) requireRole(actor entity.Actor, companyID string, minRole entity.Role) error {
	if err := sameCompany(actor, companyID); err != nil {
		return err
	}
	if !access.AtLeast(actor.Role, minRole) {
		return domain.ErrForbidden
	}
	return nil
}

// targetUser carga el usuario objetivo y verifica que el actor pueda verlo (write=false) o editarlo.
// Leer los datos propios siempre está permitido; editarse a uno mismo no.
func (uc *UseCase) targetUser(ctx context.Context, actor entity.Actor, companyID, userID string, write bool) (*entity.User, error) {
	if err := sameCompany(actor, companyID); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, domain.NewValidationError("user_id", "obligatorio")
	}
	user, err := uc.users.GetByID(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.ID == actor.UserID {
		if write {
			return nil, domain.ErrForbidden
		}
		return user, nil
	}
	if !access.CanManage(actor.Role, user.Role) {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

func sameCompany(actor entity.Actor, companyID string) error {
	if companyID == "" {
		return domain.NewValidationError("company_id", "obligatorio")
	}
	if actor.CompanyID != companyID {
		return domain.ErrCrossCompany
	}
	return nil
}

func buildMatrixRows(companyID string, roleModules map[string][]string, catalog []entity.Module, now time.Time) ([]entity.RoleModuleConfig, error) {
	inCatalog := access.CatalogIndex(catalog)
	rows := make([]entity.RoleModuleConfig, 0, len(roleModules))
	for _, role := range entity.Roles() {
		if _, ok := roleModules[string(role)]; !ok {
			continue
		}
		ids := roleModules[string(role)]
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if !entity.ValidModuleID(id) {
				return nil, domain.NewValidationError("roleModules."+string(role), fmt.Sprintf("id de módulo inválido %q", id))
			}
			if _, dup := seen[id]; dup {
				return nil, domain.NewValidationError("roleModules."+string(role), fmt.Sprintf("módulo repetido %q", id))
			}
			seen[id] = struct{}{}
			if _, ok := inCatalog[id]; !ok {
				return nil, fmt.Errorf("%s: %w", id, domain.ErrModuleNotFound)
			}
		}
		rows = append(rows, entity.RoleModuleConfig{
			CompanyID: companyID, Role: role, ModuleIDs: append([]string{}, ids...), UpdatedAt: now,
		})
	}
	if len(rows) != len(roleModules) {
		for key := range roleModules {
			if r, ok := entity.ParseRole(key); !ok || string(r) != key {
				return nil, domain.NewValidationError("roleModules", fmt.Sprintf("rol desconocido %q", key))
			}
		}
	}
	return rows, nil
}

// pruneRedundant borra los overrides que coinciden con la base del rol de su usuario.
// Los módulos fuera del catálogo quedan para CleanupCatalog; usuarios inexistentes se saltean.
func (uc *UseCase) pruneRedundant(
	ctx context.Context,
	overrideRepo repository.OverrideRepository,
	catalog []entity.Module,
	state entity.MatrixState,
	list []entity.ModuleOverride,
	loadUser func(userID string) (*entity.User, error),
) (int, error) {
	inCatalog := access.CatalogIndex(catalog)
	byUser := make(map[string][]entity.ModuleOverride)
	var order []string
	for _, o := range list {
		if _, ok := inCatalog[o.ModuleID]; !ok {
			continue
		}
		if _, seen := byUser[o.UserID]; !seen {
			order = append(order, o.UserID)
		}
		byUser[o.UserID] = append(byUser[o.UserID], o)
	}

	baselines := make(map[entity.Role]access.ModuleSet)
	removed := 0
	for _, userID := range order {
		user, err := loadUser(userID)
		if err != nil {
			return removed, err
		}
		if user == nil {
			continue
		}
		baseline, ok := baselines[user.Role]
		if !ok {
			baseline = access.Baseline(catalog, state, user.Role)
			baselines[user.Role] = baseline
		}
		for _, o := range byUser[userID] {
			if !access.IsRedundant(o, baseline) {
				continue
			}
			if err := overrideRepo.Delete(ctx, o.CompanyID, o.UserID, o.ModuleID); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

func buildOverrides(companyID, userID, actorID string, items []dto.OverrideItem, catalog []entity.Module, now time.Time) ([]entity.ModuleOverride, error) {
	inCatalog := access.CatalogIndex(catalog)
	seen := make(map[string]struct{}, len(items))
	out := make([]entity.ModuleOverride, 0, len(items))
	for i, it := range items {
		field := fmt.Sprintf("overrides[%d]", i)
		t := entity.OverrideType(it.OverrideType)
		if !t.Valid() {
			return nil, domain.NewValidationError(field+".override_type", "debe ser grant o revoke")
		}
		if !entity.ValidModuleID(it.ModuleID) {
			return nil, domain.NewValidationError(field+".module_id", "formato inválido")
		}
		if _, dup := seen[it.ModuleID]; dup {
			return nil, domain.NewValidationError(field+".module_id", "módulo repetido")
		}
		seen[it.ModuleID] = struct{}{}
		if _, ok := inCatalog[it.ModuleID]; !ok {
			return nil, fmt.Errorf("%s: %w", it.ModuleID, domain.ErrModuleNotFound)
		}
		out = append(out, entity.ModuleOverride{
			CompanyID: companyID, UserID: userID, ModuleID: it.ModuleID,
			OverrideType: t, CreatedBy: actorID, CreatedAt: now,
		})
	}
	return out, nil
}

func toModuleResponses(catalog []entity.Module) []dto.ModuleResponse {
	out := make([]dto.ModuleResponse, 0, len(catalog))
	for _, m := range catalog {
		out = append(out, dto.ModuleResponse{ID: m.ID, Name: m.Name, Category: m.Category, IsCore: m.IsCore})
	}
	return out
}

func toOverrideItems(list []entity.ModuleOverride) []dto.OverrideItem {
	out := make([]dto.OverrideItem, 0, len(list))
	for _, o := range list {
		out = append(out, dto.OverrideItem{ModuleID: o.ModuleID, OverrideType: string(o.OverrideType)})
	}
	return out
}

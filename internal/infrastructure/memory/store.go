// Package memory implementa los puertos de persistencia en memoria.
// Sirve para tests de casos de uso y para levantar la API sin PostgreSQL (APP_STORAGE=memory).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/access"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
)

var (
	_ repository.UserRepository       = (*UserRepo)(nil)
	_ repository.CompanyRepository    = (*CompanyRepo)(nil)
	_ repository.ModuleCatalog        = (*CompanyRepo)(nil)
	_ repository.ClientRepository     = (*ClientRepo)(nil)
	_ repository.RoleModuleRepository = (*RoleModuleRepo)(nil)
	_ repository.OverrideRepository   = (*OverrideRepo)(nil)
	_ repository.InvitationRepository = (*InvitationRepo)(nil)
)

type dataset struct {
	companies   map[string]entity.Company
	catalogs    map[string][]entity.Module
	clients     map[string]entity.Client
	users       map[string]entity.User
	roleModules map[string]map[entity.Role]entity.RoleModuleConfig
	overrides   map[string]map[string]entity.ModuleOverride
	invitations map[string]entity.Invitation
}

func newDataset() *dataset {
	return &dataset{
		companies:   make(map[string]entity.Company),
		catalogs:    make(map[string][]entity.Module),
		clients:     make(map[string]entity.Client),
		users:       make(map[string]entity.User),
		roleModules: make(map[string]map[entity.Role]entity.RoleModuleConfig),
		overrides:   make(map[string]map[string]entity.ModuleOverride),
		invitations: make(map[string]entity.Invitation),
	}
}

// clone copia profunda; es la copia de trabajo de cada transacción.
func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.companies {
		c.companies[k] = v
	}
	for k, v := range d.catalogs {
		c.catalogs[k] = append([]entity.Module(nil), v...)
	}
	for k, v := range d.clients {
		c.clients[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, roles := range d.roleModules {
		m := make(map[entity.Role]entity.RoleModuleConfig, len(roles))
		for r, cfg := range roles {
			cfg.ModuleIDs = append([]string{}, cfg.ModuleIDs...)
			m[r] = cfg
		}
		c.roleModules[k] = m
	}
	for k, mods := range d.overrides {
		m := make(map[string]entity.ModuleOverride, len(mods))
		for id, o := range mods {
			m[id] = o
		}
		c.overrides[k] = m
	}
	for k, v := range d.invitations {
		c.invitations[k] = v
	}
	return c
}

// Store guarda todos los agregados detrás de un único RWMutex.
// Las transacciones trabajan sobre una copia que reemplaza a data recién al confirmar,
// así los lectores nunca ven un reemplazo a medias.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex // serializa escritores: transacciones y escrituras sueltas
	data *dataset
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

func (s *Store) root() handle { return handle{s: s} }

// Users, Companies, Clients, RoleModules, Overrides e Invitations devuelven las vistas por puerto.
func (s *Store) Users() *UserRepo             { return &UserRepo{s.root()} }
func (s *Store) Companies() *CompanyRepo      { return &CompanyRepo{s.root()} }
func (s *Store) Clients() *ClientRepo         { return &ClientRepo{s.root()} }
func (s *Store) RoleModules() *RoleModuleRepo { return &RoleModuleRepo{s.root()} }
func (s *Store) Overrides() *OverrideRepo     { return &OverrideRepo{s.root()} }
func (s *Store) Invitations() *InvitationRepo { return &InvitationRepo{s.root()} }

// handle apunta al dataset vigente o, dentro de una transacción, a su copia de trabajo.
type handle struct {
	s  *Store
	tx *dataset
}

func (h handle) read() (*dataset, func()) {
	if h.tx != nil {
		return h.tx, func() {}
	}
	h.s.mu.RLock()
	return h.s.data, h.s.mu.RUnlock
}

// write fuera de una transacción espera a que termine la que esté en curso;
// si no, el reemplazo del dataset al confirmar pisaría la escritura.
func (h handle) write() (*dataset, func()) {
	if h.tx != nil {
		return h.tx, func() {}
	}
	h.s.txMu.Lock()
	h.s.mu.Lock()
	return h.s.data, func() {
		h.s.mu.Unlock()
		h.s.txMu.Unlock()
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Carga de datos (tests y modo demo)
// ──────────────────────────────────────────────────────────────────────────────

// PutCompany registra una empresa con su catálogo contratado.
func (s *Store) PutCompany(c entity.Company, catalog ...entity.Module) {
	d, done := s.root().write()
	defer done()
	d.companies[c.ID] = c
	d.catalogs[c.ID] = append([]entity.Module(nil), catalog...)
}

// SetCatalog reemplaza el catálogo de la empresa (simula altas y bajas comerciales).
func (s *Store) SetCatalog(companyID string, catalog ...entity.Module) {
	d, done := s.root().write()
	defer done()
	d.catalogs[companyID] = append([]entity.Module(nil), catalog...)
}

// PutClient registra un cliente.
func (s *Store) PutClient(c entity.Client) {
	d, done := s.root().write()
	defer done()
	d.clients[key(c.CompanyID, c.ID)] = c
}

// PutUser registra un usuario sin validar unicidad.
func (s *Store) PutUser(u entity.User) {
	d, done := s.root().write()
	defer done()
	d.users[u.ID] = u
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios
// ──────────────────────────────────────────────────────────────────────────────

// UserRepo vista de usuarios.
type UserRepo struct{ handle }

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	d, done := r.write()
	defer done()
	for _, u := range d.users {
		if u.CompanyID == user.CompanyID && strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	d.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, companyID, id string) (*entity.User, error) {
	d, done := r.read()
	defer done()
	u, ok := d.users[id]
	if !ok || u.CompanyID != companyID {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmailAndCompany(_ context.Context, email, companyID string) (*entity.User, error) {
	d, done := r.read()
	defer done()
	for _, u := range d.users {
		if u.CompanyID == companyID && strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	d, done := r.write()
	defer done()
	cur, ok := d.users[user.ID]
	if !ok || cur.CompanyID != user.CompanyID {
		return domain.ErrUserNotFound
	}
	cur.Name, cur.Role, cur.Status, cur.UpdatedAt = user.Name, user.Role, user.Status, user.UpdatedAt
	d.users[user.ID] = cur
	return nil
}

func (r *UserRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	d, done := r.read()
	var list []*entity.User
	for _, u := range d.users {
		if u.CompanyID == companyID {
			u := u
			list = append(list, &u)
		}
	}
	done()
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, offset), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Empresas, catálogo y clientes
// ──────────────────────────────────────────────────────────────────────────────

// CompanyRepo vista de empresas y catálogo.
type CompanyRepo struct{ handle }

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	d, done := r.read()
	defer done()
	c, ok := d.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CompanyRepo) ListModules(_ context.Context, companyID string) ([]entity.Module, error) {
	d, done := r.read()
	list := append([]entity.Module(nil), d.catalogs[companyID]...)
	done()
	access.SortCatalog(list)
	return list, nil
}

// ClientRepo vista de clientes.
type ClientRepo struct{ handle }

func (r *ClientRepo) GetByID(_ context.Context, companyID, id string) (*entity.Client, error) {
	d, done := r.read()
	defer done()
	c, ok := d.clients[key(companyID, id)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Matriz y overrides
// ──────────────────────────────────────────────────────────────────────────────

// RoleModuleRepo vista de la matriz rol→módulos.
type RoleModuleRepo struct{ handle }

func (r *RoleModuleRepo) ListByCompany(_ context.Context, companyID string) ([]entity.RoleModuleConfig, error) {
	d, done := r.read()
	defer done()
	rows := d.roleModules[companyID]
	list := make([]entity.RoleModuleConfig, 0, len(rows))
	for _, cfg := range rows {
		cfg.ModuleIDs = append([]string{}, cfg.ModuleIDs...)
		list = append(list, cfg)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Role < list[j].Role })
	return list, nil
}

func (r *RoleModuleRepo) Upsert(_ context.Context, cfg *entity.RoleModuleConfig) error {
	d, done := r.write()
	defer done()
	rows, ok := d.roleModules[cfg.CompanyID]
	if !ok {
		rows = make(map[entity.Role]entity.RoleModuleConfig)
		d.roleModules[cfg.CompanyID] = rows
	}
	c := *cfg
	c.ModuleIDs = append([]string{}, cfg.ModuleIDs...)
	rows[cfg.Role] = c
	return nil
}

func (r *RoleModuleRepo) DeleteByCompany(_ context.Context, companyID string) error {
	d, done := r.write()
	defer done()
	delete(d.roleModules, companyID)
	return nil
}

// OverrideRepo vista de overrides por usuario.
type OverrideRepo struct{ handle }

func (r *OverrideRepo) ListByUser(_ context.Context, companyID, userID string) ([]entity.ModuleOverride, error) {
	d, done := r.read()
	defer done()
	mods := d.overrides[key(companyID, userID)]
	list := make([]entity.ModuleOverride, 0, len(mods))
	for _, o := range mods {
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ModuleID < list[j].ModuleID })
	return list, nil
}

func (r *OverrideRepo) ListByCompany(_ context.Context, companyID string) ([]entity.ModuleOverride, error) {
	d, done := r.read()
	defer done()
	prefix := companyID + "|"
	var list []entity.ModuleOverride
	for k, mods := range d.overrides {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		for _, o := range mods {
			list = append(list, o)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UserID != list[j].UserID {
			return list[i].UserID < list[j].UserID
		}
		return list[i].ModuleID < list[j].ModuleID
	})
	return list, nil
}

func (r *OverrideRepo) Upsert(_ context.Context, o *entity.ModuleOverride) error {
	d, done := r.write()
	defer done()
	k := key(o.CompanyID, o.UserID)
	mods, ok := d.overrides[k]
	if !ok {
		mods = make(map[string]entity.ModuleOverride)
		d.overrides[k] = mods
	}
	mods[o.ModuleID] = *o
	return nil
}

func (r *OverrideRepo) Delete(_ context.Context, companyID, userID, moduleID string) error {
	d, done := r.write()
	defer done()
	delete(d.overrides[key(companyID, userID)], moduleID)
	return nil
}

func (r *OverrideRepo) DeleteByUser(_ context.Context, companyID, userID string) error {
	d, done := r.write()
	defer done()
	delete(d.overrides, key(companyID, userID))
	return nil
}

func (r *OverrideRepo) DistinctModules(_ context.Context, companyID string) ([]string, error) {
	d, done := r.read()
	defer done()
	prefix := companyID + "|"
	seen := make(map[string]struct{})
	for k, mods := range d.overrides {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		for id := range mods {
			seen[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *OverrideRepo) DeleteModules(_ context.Context, companyID string, moduleIDs []string) (int64, error) {
	d, done := r.write()
	defer done()
	prefix := companyID + "|"
	var n int64
	for k, mods := range d.overrides {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		for _, id := range moduleIDs {
			if _, ok := mods[id]; ok {
				delete(mods, id)
				n++
			}
		}
	}
	return n, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Invitaciones
// ──────────────────────────────────────────────────────────────────────────────

// InvitationRepo vista de invitaciones.
type InvitationRepo struct{ handle }

func (r *InvitationRepo) Create(_ context.Context, inv *entity.Invitation) error {
	d, done := r.write()
	defer done()
	for _, cur := range d.invitations {
		if cur.TokenHash == inv.TokenHash {
			return domain.ErrConflict
		}
	}
	d.invitations[inv.ID] = *inv
	return nil
}

func (r *InvitationRepo) GetByID(_ context.Context, companyID, id string) (*entity.Invitation, error) {
	d, done := r.read()
	defer done()
	inv, ok := d.invitations[id]
	if !ok || inv.CompanyID != companyID {
		return nil, nil
	}
	return &inv, nil
}

func (r *InvitationRepo) GetByTokenHash(_ context.Context, tokenHash string) (*entity.Invitation, error) {
	d, done := r.read()
	defer done()
	for _, inv := range d.invitations {
		if inv.TokenHash == tokenHash {
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *InvitationRepo) FindPendingByEmail(_ context.Context, companyID, email string, now time.Time) (*entity.Invitation, error) {
	d, done := r.read()
	defer done()
	var found *entity.Invitation
	for _, inv := range d.invitations {
		if inv.CompanyID != companyID || !strings.EqualFold(inv.Email, email) {
			continue
		}
		if inv.EffectiveStatus(now) != entity.InvitationPending {
			continue
		}
		if found == nil || inv.CreatedAt.After(found.CreatedAt) {
			inv := inv
			found = &inv
		}
	}
	return found, nil
}

func (r *InvitationRepo) List(_ context.Context, companyID string, f repository.InvitationFilter) ([]*entity.Invitation, error) {
	d, done := r.read()
	var list []*entity.Invitation
	for _, inv := range d.invitations {
		if inv.CompanyID != companyID {
			continue
		}
		if f.Status != "" && inv.EffectiveStatus(f.Now) != f.Status {
			continue
		}
		inv := inv
		list = append(list, &inv)
	}
	done()
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return page(list, f.Limit, f.Offset), nil
}

func (r *InvitationRepo) MarkAccepted(_ context.Context, id, userID string, at time.Time) (bool, error) {
	d, done := r.write()
	defer done()
	inv, ok := d.invitations[id]
	if !ok || inv.EffectiveStatus(at) != entity.InvitationPending {
		return false, nil
	}
	inv.Status = entity.InvitationAccepted
	inv.AcceptedAt = &at
	inv.AcceptedBy = &userID
	d.invitations[id] = inv
	return true, nil
}

func (r *InvitationRepo) MarkCancelled(_ context.Context, id, actorID string, at time.Time) (bool, error) {
	d, done := r.write()
	defer done()
	inv, ok := d.invitations[id]
	if !ok || inv.EffectiveStatus(at) != entity.InvitationPending {
		return false, nil
	}
	inv.Status = entity.InvitationCancelled
	inv.CancelledAt = &at
	inv.CancelledBy = &actorID
	d.invitations[id] = inv
	return true, nil
}

func key(parts ...string) string {
	return strings.Join(parts, "|")
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

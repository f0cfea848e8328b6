package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

// Store is an in-memory transactional store. Updates are serialized by a
// single writer lock and see a copy-on-write overlay of the committed state;
// the overlay is applied only when fn returns nil.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   *state
}

type docKey struct {
	kind entities.DocumentKind
	id   string
}

type state struct {
	parts      map[string]*entities.SparePart
	locations  map[string]*entities.Location
	suppliers  map[string]*entities.Supplier
	taxes      map[string]*entities.Tax
	categories map[string]*entities.Category
	units      map[string]*entities.Unit
	machines   map[string]*entities.Machine
	links      map[string]*entities.MachinePartLink
	users      map[string]*entities.User
	stock      map[entities.StockKey]*entities.StockLevel
	documents  map[docKey]entities.Document
	sequences  map[string]int64
	movements  []*entities.StockMovement
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		state: &state{
			parts:      make(map[string]*entities.SparePart),
			locations:  make(map[string]*entities.Location),
			suppliers:  make(map[string]*entities.Supplier),
			taxes:      make(map[string]*entities.Tax),
			categories: make(map[string]*entities.Category),
			units:      make(map[string]*entities.Unit),
			machines:   make(map[string]*entities.Machine),
			links:      make(map[string]*entities.MachinePartLink),
			users:      make(map[string]*entities.User),
			stock:      make(map[entities.StockKey]*entities.StockLevel),
			documents:  make(map[docKey]entities.Document),
			sequences:  make(map[string]int64),
		},
	}
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)

// View runs fn against a read-only snapshot
func (s *Store) View(ctx context.Context, fn func(tx repositories.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.begin(false))
}

// Update runs fn in a transaction that is committed only if fn succeeds
func (s *Store) Update(ctx context.Context, fn func(tx repositories.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	t := s.begin(true)
	if err := fn(t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	t.commit(s.state)
	s.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory store
func (s *Store) Close() error {
	return nil
}

func (s *Store) begin(writable bool) *tx {
	st := s.state
	return &tx{
		writable:   writable,
		parts:      newOverlay(st.parts, clonePart),
		locations:  newOverlay(st.locations, cloneLocation),
		suppliers:  newOverlay(st.suppliers, cloneSupplier),
		taxes:      newOverlay(st.taxes, cloneTax),
		categories: newOverlay(st.categories, cloneCategory),
		units:      newOverlay(st.units, cloneUnit),
		machines:   newOverlay(st.machines, cloneMachine),
		links:      newOverlay(st.links, cloneLink),
		users:      newOverlay(st.users, cloneUser),
		stock:      newOverlay(st.stock, cloneStock),
		documents:  newOverlay(st.documents, entities.Document.CloneDocument),
		sequences:  newOverlay(st.sequences, func(v int64) int64 { return v }),
		movements:  st.movements,
	}
}

// overlay layers uncommitted writes over a committed map. Values are cloned
// on the way in and out so callers never alias stored state.
type overlay[K comparable, V any] struct {
	base    map[K]V
	pending map[K]V
	clone   func(V) V
}

func newOverlay[K comparable, V any](base map[K]V, clone func(V) V) *overlay[K, V] {
	return &overlay[K, V]{base: base, pending: make(map[K]V), clone: clone}
}

func (o *overlay[K, V]) get(k K) (V, bool) {
	if v, ok := o.pending[k]; ok {
		return o.clone(v), true
	}
	v, ok := o.base[k]
	if !ok {
		return v, false
	}
	return o.clone(v), true
}

func (o *overlay[K, V]) put(k K, v V) {
	o.pending[k] = o.clone(v)
}

func (o *overlay[K, V]) values() []V {
	out := make([]V, 0, len(o.base)+len(o.pending))
	for k, v := range o.base {
		if _, shadowed := o.pending[k]; shadowed {
			continue
		}
		out = append(out, o.clone(v))
	}
	for _, v := range o.pending {
		out = append(out, o.clone(v))
	}
	return out
}

func (o *overlay[K, V]) commitTo(base map[K]V) {
	for k, v := range o.pending {
		base[k] = v
	}
}

type tx struct {
	writable   bool
	parts      *overlay[string, *entities.SparePart]
	locations  *overlay[string, *entities.Location]
	suppliers  *overlay[string, *entities.Supplier]
	taxes      *overlay[string, *entities.Tax]
	categories *overlay[string, *entities.Category]
	units      *overlay[string, *entities.Unit]
	machines   *overlay[string, *entities.Machine]
	links      *overlay[string, *entities.MachinePartLink]
	users      *overlay[string, *entities.User]
	stock      *overlay[entities.StockKey, *entities.StockLevel]
	documents  *overlay[docKey, entities.Document]
	sequences  *overlay[string, int64]

	movements        []*entities.StockMovement
	pendingMovements []*entities.StockMovement
}

func (t *tx) commit(st *state) {
	t.parts.commitTo(st.parts)
	t.locations.commitTo(st.locations)
	t.suppliers.commitTo(st.suppliers)
	t.taxes.commitTo(st.taxes)
	t.categories.commitTo(st.categories)
	t.units.commitTo(st.units)
	t.machines.commitTo(st.machines)
	t.links.commitTo(st.links)
	t.users.commitTo(st.users)
	t.stock.commitTo(st.stock)
	t.documents.commitTo(st.documents)
	t.sequences.commitTo(st.sequences)
	st.movements = append(st.movements, t.pendingMovements...)
}

func (t *tx) checkWritable() error {
	if !t.writable {
		return repositories.ErrReadOnly
	}
	return nil
}

func (t *tx) Parts() repositories.PartRepository          { return partRepo{t} }
func (t *tx) Locations() repositories.LocationRepository  { return locationRepo{t} }
func (t *tx) Suppliers() repositories.SupplierRepository  { return supplierRepo{t} }
func (t *tx) Taxes() repositories.TaxRepository           { return taxRepo{t} }
func (t *tx) Categories() repositories.CategoryRepository { return categoryRepo{t} }
func (t *tx) Units() repositories.UnitRepository          { return unitRepo{t} }
func (t *tx) Machines() repositories.MachineRepository    { return machineRepo{t} }
func (t *tx) Stock() repositories.StockRepository         { return stockRepo{t} }
func (t *tx) Documents() repositories.DocumentRepository  { return documentRepo{t} }
func (t *tx) Sequences() repositories.SequenceRepository  { return sequenceRepo{t} }
func (t *tx) Users() repositories.UserRepository          { return userRepo{t} }

func clonePart(p *entities.SparePart) *entities.SparePart {
	c := *p
	return &c
}

func cloneLocation(l *entities.Location) *entities.Location {
	c := *l
	return &c
}

func cloneSupplier(s *entities.Supplier) *entities.Supplier {
	c := *s
	return &c
}

func cloneTax(t *entities.Tax) *entities.Tax {
	c := *t
	c.HSNCodes = append([]string(nil), t.HSNCodes...)
	return &c
}

func cloneCategory(c *entities.Category) *entities.Category {
	out := *c
	return &out
}

func cloneUnit(u *entities.Unit) *entities.Unit {
	c := *u
	return &c
}

func cloneMachine(m *entities.Machine) *entities.Machine {
	c := *m
	c.InstallationDate = cloneTime(m.InstallationDate)
	c.LastMaintenanceDate = cloneTime(m.LastMaintenanceDate)
	return &c
}

func cloneLink(l *entities.MachinePartLink) *entities.MachinePartLink {
	c := *l
	c.RemovedDate = cloneTime(l.RemovedDate)
	return &c
}

func cloneUser(u *entities.User) *entities.User {
	c := *u
	return &c
}

func cloneStock(s *entities.StockLevel) *entities.StockLevel {
	c := *s
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func sortBy[V any](values []V, key func(V) string) {
	sort.Slice(values, func(i, j int) bool {
		return key(values[i]) < key(values[j])
	})
}
